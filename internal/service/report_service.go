package service

import (
	"context"
	"runtime"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

// RuntimeInfo 运行时摘要的数据来源
type RuntimeInfo struct {
	Version      string
	DatabaseType string
	ChatBackend  string
	HistoryStore string
	WriteQueues  func() int
	PoolWorkers  func() int
}

// ReportService 定义报表业务服务接口
type ReportService interface {
	// Prompts 提示词与用户统计
	Prompts(ctx context.Context) (*dto.ReportDTO, error)

	// System 运行时摘要
	System(ctx context.Context) (*dto.SystemDTO, error)
}

type reportService struct {
	promptRepo domain.PromptRepository
	userRepo   domain.UserRepository
	info       RuntimeInfo
	logger     *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(promptRepo domain.PromptRepository, userRepo domain.UserRepository, info RuntimeInfo, logger *zap.Logger) ReportService {
	return &reportService{promptRepo: promptRepo, userRepo: userRepo, info: info, logger: logger}
}

func (s *reportService) Prompts(ctx context.Context) (*dto.ReportDTO, error) {
	stats, err := s.promptRepo.Stats(ctx)
	if err != nil {
		s.logger.Error("prompt stats failed", zap.Error(err))
		return nil, code.ErrorDBQuery
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery
	}

	out := &dto.ReportDTO{
		Lineages:      stats.Lineages,
		Versions:      stats.Versions,
		MaxVersion:    stats.MaxVersion,
		Categories:    make([]dto.CategoryCountDTO, 0, len(stats.Categories)),
		LatestCreated: stats.LatestCreated,
		Users:         users,
	}
	for _, c := range stats.Categories {
		out.Categories = append(out.Categories, dto.CategoryCountDTO{Category: c.Category, Count: c.Count})
	}
	return out, nil
}

// System 主机信息获取失败只记录日志，对应字段留空
func (s *reportService) System(ctx context.Context) (*dto.SystemDTO, error) {
	out := &dto.SystemDTO{
		Version:      s.info.Version,
		GoVersion:    runtime.Version(),
		Goroutines:   runtime.NumGoroutine(),
		OS:           runtime.GOOS + "/" + runtime.GOARCH,
		DatabaseType: s.info.DatabaseType,
		ChatBackend:  s.info.ChatBackend,
		HistoryStore: s.info.HistoryStore,
	}
	if s.info.WriteQueues != nil {
		out.WriteQueues = s.info.WriteQueues()
	}
	if s.info.PoolWorkers != nil {
		out.PoolWorkers = s.info.PoolWorkers()
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		out.Hostname = hi.Hostname
		out.Uptime = hi.Uptime
	} else {
		s.logger.Warn("host info unavailable", zap.Error(err))
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.MemUsed = vm.Used
		out.MemTotal = vm.Total
	} else {
		s.logger.Warn("memory info unavailable", zap.Error(err))
	}
	if pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pct) > 0 {
		out.CPUPercent = pct[0]
	}
	return out, nil
}
