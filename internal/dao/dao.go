// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/model"
	"github.com/haierkeys/agent-scrum-service/pkg/fileurl"
	"github.com/haierkeys/agent-scrum-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite/mysql/postgres
	Type string
	// Path sqlite 文件路径
	Path     string
	UserName string
	Password string
	// Host 主机地址，mysql 为 host:port，postgres 为 host 或 host:port
	Host string
	Name string
	// Replicas 只读副本地址（与 Host 同格式），通过 dbresolver 读写分离
	Replicas        []string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	// RunMode debug 模式下打印 SQL
	RunMode string
}

// Dao 数据访问对象，持有数据库连接、可选的 Redis 连接和写队列
type Dao struct {
	db         *gorm.DB
	ctx        context.Context
	logger     *zap.Logger
	writeQueue *writequeue.Manager
	redis      *redis.Client
}

// Option Dao 选项
type Option func(*Dao)

// WithLogger 注入日志器
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) { d.logger = l }
}

// WithWriteQueueManager 注入写队列，SQLite 下串行化写操作
func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) { d.writeQueue = m }
}

// WithRedis 注入 Redis 客户端，启用 Redis 对话历史
func WithRedis(c *redis.Client) Option {
	return func(d *Dao) { d.redis = c }
}

// New 创建 Dao
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{db: db, ctx: ctx}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// DB 返回绑定了 ctx 的会话
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// Logger 日志器
func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// Redis 可能为 nil
func (d *Dao) Redis() *redis.Client {
	return d.redis
}

// ExecuteWrite 执行写操作；配置了写队列时按 key 串行执行
func (d *Dao) ExecuteWrite(ctx context.Context, key string, fn func(db *gorm.DB) error) error {
	if d.writeQueue == nil {
		return fn(d.DB(ctx))
	}
	return d.writeQueue.Execute(ctx, key, func(ctx context.Context) error {
		return fn(d.DB(ctx))
	})
}

// NewDBEngineWithConfig 根据配置创建 gorm 连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(c, c.Host)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Type)
	}

	if len(c.Replicas) > 0 && c.Type != "sqlite" {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, host := range c.Replicas {
			rd, err := dialectorFor(c, host)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, rd)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "register read replicas")
		}
		if lg != nil {
			lg.Info("database read replicas registered", zap.Int("count", len(replicas)))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" || c.Type == "" {
		// SQLite 单写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		if c.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
	}
	// 内存库随连接销毁，不设置连接回收
	if c.Path != ":memory:" {
		sqlDB.SetConnMaxLifetime(parseDurationOr(c.ConnMaxLifetime, 10*time.Minute))
		sqlDB.SetConnMaxIdleTime(parseDurationOr(c.ConnMaxIdleTime, 5*time.Minute))
	}

	if err := db.Use(&gormTracing.OpentracingPlugin{}); err != nil && lg != nil {
		lg.Warn("gorm tracing plugin not registered", zap.Error(err))
	}

	if c.AutoMigrate {
		if err := model.AutoMigrate(db, ""); err != nil {
			return nil, errors.Wrap(err, "auto migrate")
		}
	}

	return db, nil
}

func dialectorFor(c DatabaseConfig, host string) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, host, c.Name, charset, c.ParseTime)), nil
	case "postgres":
		h, port := host, "5432"
		for i := len(host) - 1; i >= 0; i-- {
			if host[i] == ':' {
				h, port = host[:i], host[i+1:]
				break
			}
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			h, port, c.UserName, c.Password, c.Name)), nil
	case "sqlite", "":
		if c.Path != ":memory:" {
			if err := fileurl.CreatePath(filepath.Dir(c.Path), os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite dir")
			}
		}
		return sqlite.Open(c.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", c.Type)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
