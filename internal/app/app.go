// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/service"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/completion"
	"github.com/haierkeys/agent-scrum-service/pkg/gdoc"
	"github.com/haierkeys/agent-scrum-service/pkg/metrics"
	"github.com/haierkeys/agent-scrum-service/pkg/workerpool"
	"github.com/haierkeys/agent-scrum-service/pkg/writequeue"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 对话历史存储类型
const (
	HistoryStoreDatabase = "database"
	HistoryStoreRedis    = "redis"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao
	Redis  *redis.Client

	StartTime time.Time

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// 上游客户端
	completionClient completion.Client
	documentClient   gdoc.Client

	// Repository 层
	PromptRepo      domain.PromptRepository
	UserRepo        domain.UserRepository
	CredentialRepo  domain.CredentialRepository
	ChatHistoryRepo domain.ChatHistoryRepository

	// Service 层
	PromptService     service.PromptService
	UserService       service.UserService
	ChatService       service.ChatService
	CredentialService service.CredentialService
	DocumentService   service.DocumentService
	ReportService     service.ReportService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option 容器选项
type Option func(*App)

// WithCompletionClient 替换对话补全客户端
func WithCompletionClient(c completion.Client) Option {
	return func(a *App) { a.completionClient = c }
}

// WithDocumentClient 替换文档客户端
func WithDocumentClient(c gdoc.Client) Option {
	return func(a *App) { a.documentClient = c }
}

// WithRedis 使用已有的 Redis 连接，优先于 redis.addr 配置
func WithRedis(c *redis.Client) Option {
	return func(a *App) { a.Redis = c }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	if a.Redis == nil && cfg.Redis.Addr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := a.Redis.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = a.Redis.Close()
			return nil, errors.Wrapf(err, "connect redis %s", cfg.Redis.Addr)
		}
	}

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, context.Background(),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
		dao.WithRedis(a.Redis),
	)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    cfg.GetTokenExpiry(),
	})

	svcConfig := cfg.GetServiceConfig()

	// 初始化 Repository 层
	a.PromptRepo = dao.NewPromptRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.CredentialRepo = dao.NewCredentialRepository(a.Dao)
	if a.Redis != nil {
		a.ChatHistoryRepo = dao.NewRedisChatHistoryRepository(a.Redis, cfg.Redis.Prefix,
			svcConfig.Chat.HistoryMaxMessages, svcConfig.Chat.HistoryTTL)
	} else {
		a.ChatHistoryRepo = dao.NewChatHistoryRepository(a.Dao, svcConfig.Chat.HistoryMaxMessages)
	}

	// 上游客户端：未配置 API Key 时使用本地规则回复
	if a.completionClient == nil && cfg.Chat.APIKey != "" {
		a.completionClient = completion.NewClient(completion.Config{
			APIKey:  cfg.Chat.APIKey,
			BaseURL: cfg.Chat.BaseURL,
			Model:   cfg.Chat.Model,
			Timeout: cfg.GetChatTimeout(),
		})
	}
	if a.documentClient == nil {
		a.documentClient = gdoc.NewClient(gdoc.Config{ApplicationName: cfg.Document.ApplicationName})
	}

	// 初始化 Service 层（依赖注入）
	a.PromptService = service.NewPromptService(a.PromptRepo, logger)
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)
	a.ChatService = service.NewChatService(a.completionClient, a.ChatHistoryRepo, a.PromptRepo, logger, svcConfig)
	a.CredentialService = service.NewCredentialService(a.CredentialRepo, logger, svcConfig)
	a.DocumentService = service.NewDocumentService(a.documentClient, a.CredentialService, a.PromptRepo, logger, svcConfig)
	a.ReportService = service.NewReportService(a.PromptRepo, a.UserRepo, service.RuntimeInfo{
		Version:      Version,
		DatabaseType: cfg.Database.Type,
		ChatBackend:  a.ChatService.Backend(),
		HistoryStore: a.HistoryStore(),
		WriteQueues:  func() int { return a.writeQueueMgr.GetMetrics().ActiveQueues },
		PoolWorkers:  func() int { return int(a.workerPool.GetMetrics().Active) },
	}, logger)

	metrics.RegisterQueueGauges(
		func() float64 { return float64(a.writeQueueMgr.GetMetrics().ActiveQueues) },
		func() float64 { return float64(a.writeQueueMgr.GetMetrics().Queued) },
		func() float64 { return float64(a.workerPool.GetMetrics().Active) },
	)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.String("chatBackend", a.ChatService.Backend()),
		zap.String("historyStore", a.HistoryStore()))

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("redis close error", zap.Error(err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// HistoryStore 对话历史存储类型
func (a *App) HistoryStore() string {
	if a.Redis != nil {
		return HistoryStoreRedis
	}
	return HistoryStoreDatabase
}

// SubmitTask 提交任务到 Worker Pool 并等待结果
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> Redis / Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return a.wg.Done
}
