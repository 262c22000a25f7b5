// Package writequeue serializes write operations that share a key
// Package writequeue 按键串行化写操作
// SQLite 只允许单写者，同一键（例如同一版本链、同一用户）的写操作排队执行，避免 "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 等待执行结果超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个键的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout 单次写操作的最长等待时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// keyQueue 单个键的 FIFO 队列，由一个 worker 协程消费
type keyQueue struct {
	key      string
	ch       chan writeOp
	lastUsed atomic.Int64
	stopCh   chan struct{}
	done     chan struct{}
}

// Manager 管理所有键的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	// mu 保护 queues 与 closed；入队也在锁内完成，回收队列时不会丢操作
	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool

	executed atomic.Int64
	rejected atomic.Int64

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
}

// New creates write queue manager, nil cfg uses DefaultConfig and nil logger uses zap.NewNop
// New 创建写队列管理器
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      c,
		logger:      logger,
		queues:      make(map[string]*keyQueue),
		cleanupStop: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute 将 fn 排入 key 对应的队列并等待其执行结果
// 同一键的操作按 FIFO 顺序逐个执行，不同键之间互不阻塞
func (m *Manager) Execute(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	op := writeOp{ctx: ctx, fn: fn, result: result}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	q := m.queues[key]
	if q == nil {
		q = m.startQueue(key)
	}
	q.lastUsed.Store(time.Now().UnixNano())
	select {
	case q.ch <- op:
	default:
		m.mu.Unlock()
		m.rejected.Add(1)
		return ErrWriteQueueFull
	}
	m.mu.Unlock()

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

// startQueue 调用方需持有 m.mu
func (m *Manager) startQueue(key string) *keyQueue {
	q := &keyQueue{
		key:    key,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	m.queues[key] = q
	go m.worker(q)

	m.logger.Debug("write queue created", zap.String("key", key))
	return q
}

func (m *Manager) worker(q *keyQueue) {
	defer close(q.done)

	for {
		select {
		case op := <-q.ch:
			m.executeOp(q, op)
		case <-q.stopCh:
			// 停止前执行完已入队的操作
			for {
				select {
				case op := <-q.ch:
					m.executeOp(q, op)
				default:
					m.logger.Debug("write queue stopped", zap.String("key", q.key))
					return
				}
			}
		}
	}
}

func (m *Manager) executeOp(q *keyQueue, op writeOp) {
	q.lastUsed.Store(time.Now().UnixNano())

	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	op.result <- op.fn(op.ctx)
	m.executed.Add(1)
}

func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.cleanupStop:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

// doCleanup 回收空闲且为空的队列
func (m *Manager) doCleanup() {
	threshold := time.Now().Add(-m.config.IdleTimeout).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, q := range m.queues {
		if q.lastUsed.Load() < threshold && len(q.ch) == 0 {
			delete(m.queues, key)
			close(q.stopCh)
		}
	}
}

// Shutdown 拒绝新操作，等待已入队的操作执行完毕；ctx 控制最长等待时间
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*keyQueue, 0, len(m.queues))
	for key, q := range m.queues {
		queues = append(queues, q)
		close(q.stopCh)
		delete(m.queues, key)
	}
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down", zap.Int("queues", len(queues)))

	close(m.cleanupStop)

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			<-q.done
		}
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}

// IsClosed 管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Metrics 写队列指标
type Metrics struct {
	QueueCapacity int
	ActiveQueues  int
	Queued        int
	Executed      int64
	Rejected      int64
	IsClosed      bool
}

// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	queued := 0
	for _, q := range m.queues {
		queued += len(q.ch)
	}
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  len(m.queues),
		Queued:        queued,
		Executed:      m.executed.Load(),
		Rejected:      m.rejected.Load(),
		IsClosed:      m.closed,
	}
}
