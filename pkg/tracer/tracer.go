// Package tracer Jaeger 分布式追踪初始化
package tracer

import (
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Config 追踪配置
type Config struct {
	ServiceName string
	// AgentHostPort jaeger-agent 地址，例如 127.0.0.1:6831
	AgentHostPort string
	// SampleRate 采样率 0~1
	SampleRate float64
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup 创建 Jaeger tracer 并设置为全局 tracer
// AgentHostPort 为空时保留 opentracing 的 NoopTracer
func Setup(cfg Config) (io.Closer, error) {
	if cfg.AgentHostPort == "" {
		return nopCloser{}, nil
	}

	rate := cfg.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	jc := &jaegercfg.Configuration{
		ServiceName: cfg.ServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "probabilistic",
			Param: rate,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:            false,
			BufferFlushInterval: time.Second,
			LocalAgentHostPort:  cfg.AgentHostPort,
		},
	}

	t, closer, err := jc.NewTracer()
	if err != nil {
		return nil, errors.Wrap(err, "create jaeger tracer")
	}
	opentracing.SetGlobalTracer(t)
	return closer, nil
}
