// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/service"
	"github.com/haierkeys/agent-scrum-service/pkg/util"
	"github.com/haierkeys/agent-scrum-service/pkg/workerpool"
	"github.com/haierkeys/agent-scrum-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	App      AppSettings    `yaml:"app"`
	Security SecurityConfig `yaml:"security"`
	Chat     ChatConfig     `yaml:"chat"`
	Document DocumentConfig `yaml:"document"`
	Tracer   TracerConfig   `yaml:"tracer"`
	Task     TaskConfig     `yaml:"task"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址，为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"agent-scrum-Auth-Token"`
	TokenExpiry  string `yaml:"token-expiry" default:"7d"` // 支持格式：7d（天）、24h（小时）、30m（分钟）
	// AdminEmail SuperAdminOnly 比对的已验证邮箱，同时用于初始化管理员
	AdminEmail string `yaml:"admin-email" default:"admin@example.com"`
	// AdminPassword 初始化管理员密码，为空时不创建管理员
	AdminPassword string `yaml:"admin-password"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite/mysql/postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path     string `yaml:"path" default:"storage/database/db.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	// Replicas 只读副本
	Replicas    []string `yaml:"replicas"`
	TablePrefix string   `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset"`
	ParseTime   bool   `yaml:"parse-time"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，sqlite 固定为 1
	MaxOpenConns    int    `yaml:"max-open-conns" default:"100"`
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// RedisConfig Redis 配置，Addr 为空时对话历史存数据库
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix 对话历史键前缀
	Prefix string `yaml:"prefix" default:"agent-scrum:chat:"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"10"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// LoginRateLimit 登录接口每秒请求数
	LoginRateLimit int64 `yaml:"login-rate-limit" default:"10"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"20"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"200"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// ChatConfig 对话补全配置，APIKey 为空时使用本地规则回复
type ChatConfig struct {
	APIKey      string   `yaml:"api-key"`
	BaseURL     string   `yaml:"base-url" default:"https://api.groq.com/openai/v1"`
	Model       string   `yaml:"model" default:"llama-3.3-70b-versatile"`
	Timeout     string   `yaml:"timeout" default:"60s"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max-tokens"`
	TopP        *float32 `yaml:"top-p"`
	// HistoryMaxMessages 每个用户保留的消息数
	HistoryMaxMessages int `yaml:"history-max-messages" default:"50"`
	// HistoryTTL 历史保留时长
	HistoryTTL string `yaml:"history-ttl" default:"7d"`
}

// DocumentConfig 文档导出配置
type DocumentConfig struct {
	ApplicationName string `yaml:"application-name" default:"agent-scrum-service"`
	// CredentialMaxSize 凭据 JSON 最大字节数
	CredentialMaxSize int64  `yaml:"credential-max-size" default:"65536"`
	NamePrefix        string `yaml:"name-prefix" default:"agent-scrum-"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent jaeger-agent 地址，为空时不上报
	JaegerAgent string  `yaml:"jaeger-agent"`
	SampleRate  float64 `yaml:"sample-rate" default:"1"`
}

// TaskConfig 定时任务配置，cron 表达式为空时不注册该任务
type TaskConfig struct {
	CredentialRevalidate string `yaml:"credential-revalidate" default:"@every 6h"`
	ChatHistoryPurge     string `yaml:"chat-history-purge" default:"@every 1h"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置并填充默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}
	// YAML 中存在但为空的字段再填一次默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}
	c.Security.AdminEmail = util.NormalizeEmail(c.Security.AdminEmail)
	return c, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil && timeout > 0 {
		cfg.WriteTimeout = timeout
	}
	if idle, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil && idle > 0 {
		cfg.IdleTimeout = idle
	}

	return cfg
}

// GetDatabaseConfig 转换为 DAO 层数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		Replicas:        c.Database.Replicas,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		Security: service.SecurityServiceConfig{
			AdminEmail:    c.Security.AdminEmail,
			AdminPassword: c.Security.AdminPassword,
		},
		Chat: service.ChatServiceConfig{
			Model:              c.Chat.Model,
			Temperature:        c.Chat.Temperature,
			MaxTokens:          c.Chat.MaxTokens,
			TopP:               c.Chat.TopP,
			HistoryMaxMessages: c.Chat.HistoryMaxMessages,
			HistoryTTL:         c.GetHistoryTTL(),
		},
		Document: service.DocumentServiceConfig{
			CredentialMaxSize: c.Document.CredentialMaxSize,
			NamePrefix:        c.Document.NamePrefix,
		},
	}
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return util.MustParseDuration(c.Security.TokenExpiry, 7*24*time.Hour)
}

// GetHistoryTTL 对话历史保留时长
func (c *AppConfig) GetHistoryTTL() time.Duration {
	return util.MustParseDuration(c.Chat.HistoryTTL, 7*24*time.Hour)
}

// GetChatTimeout 上游补全超时
func (c *AppConfig) GetChatTimeout() time.Duration {
	return util.MustParseDuration(c.Chat.Timeout, time.Minute)
}
