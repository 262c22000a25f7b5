// Package metrics Prometheus 指标，通过私有端口 /metrics 暴露
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agent_scrum"

var (
	// HTTPRequests 按路由统计的请求数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration 请求耗时
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// PromptOperations 提示词写操作结果
	PromptOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prompt_operations_total",
		Help:      "Prompt store mutations by operation and result.",
	}, []string{"operation", "result"})

	// AuthzDecisions 授权策略判定结果
	AuthzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Authorization decisions by policy.",
	}, []string{"policy", "decision"})

	// UpstreamErrors 上游服务错误
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_errors_total",
		Help:      "Errors returned by the chat-completion and document services.",
	}, []string{"service", "type"})

	// TaskRuns 定时任务执行次数
	TaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_runs_total",
		Help:      "Scheduled task runs by task and result.",
	}, []string{"task", "result"})
)

var gaugeOnce sync.Once

// RegisterQueueGauges 注册写队列与协程池的实时指标，只生效一次
func RegisterQueueGauges(activeQueues, queuedWrites, activeWorkers func() float64) {
	gaugeOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "write_queue_active",
			Help:      "Active write queues.",
		}, activeQueues)
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "write_queue_pending",
			Help:      "Writes waiting in queues.",
		}, queuedWrites)
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_pool_active",
			Help:      "Busy worker pool goroutines.",
		}, activeWorkers)
	})
}

// Result 把错误转换成 result 标签
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
