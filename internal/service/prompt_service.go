package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	"github.com/haierkeys/agent-scrum-service/pkg/diff"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"
	"github.com/haierkeys/agent-scrum-service/pkg/metrics"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// PromptService 定义提示词业务服务接口
type PromptService interface {
	// ListCurrent 所有当前版本，最新创建的在前
	ListCurrent(ctx context.Context) ([]*dto.PromptDTO, error)

	// Get 获取单条记录及其版本链
	Get(ctx context.Context, id int64) (*dto.PromptDetailDTO, error)

	// GetLineage 获取 id 所在的版本链，按版本号倒序
	GetLineage(ctx context.Context, id int64) ([]*dto.PromptDTO, error)

	// GetCurrent 获取 id 所在版本链的当前版本
	GetCurrent(ctx context.Context, id int64) (*dto.PromptDTO, error)

	// Create 创建版本链根记录
	Create(ctx context.Context, params *dto.PromptCreateRequest, createdBy string) (*dto.PromptDTO, error)

	// CreateVersion 编辑即新建版本
	CreateVersion(ctx context.Context, params *dto.PromptEditRequest, createdBy string) (*dto.PromptDTO, error)

	// Delete 删除记录，必要时提升最高剩余版本
	Delete(ctx context.Context, params *dto.PromptDeleteRequest) (*dto.PromptDeleteDTO, error)

	// Diff 同一版本链两个版本内容的差异
	Diff(ctx context.Context, fromID, toID int64) (*dto.PromptDiffDTO, error)
}

// promptService 实现 PromptService 接口
type promptService struct {
	repo   domain.PromptRepository
	logger *zap.Logger
	sf     *singleflight.Group
	now    func() time.Time
}

// NewPromptService 创建 PromptService 实例
func NewPromptService(repo domain.PromptRepository, logger *zap.Logger) PromptService {
	return &promptService{
		repo:   repo,
		logger: logger,
		sf:     &singleflight.Group{},
		now:    time.Now,
	}
}

func promptToDTO(p *domain.Prompt) *dto.PromptDTO {
	if p == nil {
		return nil
	}
	out := &dto.PromptDTO{}
	_ = copier.Copy(out, p)
	return out
}

func promptsToDTO(ps []*domain.Prompt) []*dto.PromptDTO {
	out := make([]*dto.PromptDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, promptToDTO(p))
	}
	return out
}

// validateDraft 校验内容字段，长度按字符计
func validateDraft(d *domain.PromptDraft) error {
	var details []string
	if strings.TrimSpace(d.Name) == "" {
		details = append(details, "name is required")
	} else if utf8.RuneCountInString(d.Name) > domain.PromptNameMaxLen {
		details = append(details, "name must be at most "+strconv.Itoa(domain.PromptNameMaxLen)+" characters")
	}
	if strings.TrimSpace(d.Description) == "" {
		details = append(details, "description is required")
	} else if utf8.RuneCountInString(d.Description) > domain.PromptDescriptionMaxLen {
		details = append(details, "description must be at most "+strconv.Itoa(domain.PromptDescriptionMaxLen)+" characters")
	}
	if strings.TrimSpace(d.Content) == "" {
		details = append(details, "content is required")
	}
	if utf8.RuneCountInString(d.Category) > domain.PromptCategoryMaxLen {
		details = append(details, "category must be at most "+strconv.Itoa(domain.PromptCategoryMaxLen)+" characters")
	}
	if len(details) > 0 {
		return code.ErrorPromptInvalid.WithDetails(details...)
	}
	return nil
}

// mapRepoError 仓储错误转换为错误码
func (s *promptService) mapRepoError(err error, fallback *code.Code) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return code.ErrorPromptNotFound
	case errors.Is(err, domain.ErrPromptConflict):
		return code.ErrorPromptConflict
	case errors.Is(err, context.DeadlineExceeded):
		return code.ErrorRequestTimeout
	}
	return fallback.WithDetails(err.Error())
}

func (s *promptService) record(op string, err error) {
	metrics.PromptOperations.WithLabelValues(op, metrics.Result(err)).Inc()
}

// ListCurrent 所有当前版本
func (s *promptService) ListCurrent(ctx context.Context) ([]*dto.PromptDTO, error) {
	ps, err := s.repo.ListCurrent(ctx)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	return promptsToDTO(ps), nil
}

// lineage 并发读取同一版本链时合并为一次查询
func (s *promptService) lineage(ctx context.Context, id int64) ([]*domain.Prompt, error) {
	v, err := sharedDo(ctx, s.sf, "lineage:"+strconv.FormatInt(id, 10), func(ctx context.Context) (interface{}, error) {
		return s.repo.GetLineage(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Prompt), nil
}

// Get 获取单条记录及其版本链
func (s *promptService) Get(ctx context.Context, id int64) (*dto.PromptDetailDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	versions, err := s.lineage(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	return &dto.PromptDetailDTO{Prompt: promptToDTO(p), Versions: promptsToDTO(versions)}, nil
}

// GetLineage 获取版本链
func (s *promptService) GetLineage(ctx context.Context, id int64) ([]*dto.PromptDTO, error) {
	versions, err := s.lineage(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	return promptsToDTO(versions), nil
}

// GetCurrent 获取当前版本
func (s *promptService) GetCurrent(ctx context.Context, id int64) (*dto.PromptDTO, error) {
	versions, err := s.lineage(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	for _, p := range versions {
		if p.IsCurrentVersion {
			return promptToDTO(p), nil
		}
	}
	s.logger.Error("lineage without current version", zap.Int64(logger.FieldPromptID, id))
	return nil, code.ErrorPromptVersionAbsent.WithDetails(domain.ErrLineageCorrupt.Error())
}

// Create 创建版本链根记录
func (s *promptService) Create(ctx context.Context, params *dto.PromptCreateRequest, createdBy string) (out *dto.PromptDTO, err error) {
	defer func() { s.record("create", err) }()

	draft := &domain.PromptDraft{
		Name:        params.Name,
		Description: params.Description,
		Content:     params.Content,
		Category:    params.Category,
		CreatedBy:   createdBy,
	}
	if err = validateDraft(draft); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, draft, s.now())
	if err != nil {
		s.logger.Error("prompt create failed", zap.Error(err))
		return nil, s.mapRepoError(err, code.ErrorPromptCreateFailed)
	}

	s.logger.Info("prompt created",
		zap.Int64(logger.FieldPromptID, p.ID),
		zap.String(logger.FieldAction, "create"))
	return promptToDTO(p), nil
}

// CreateVersion 编辑即新建版本
func (s *promptService) CreateVersion(ctx context.Context, params *dto.PromptEditRequest, createdBy string) (out *dto.PromptDTO, err error) {
	defer func() { s.record("create_version", err) }()

	draft := &domain.PromptDraft{
		Name:        params.Name,
		Description: params.Description,
		Content:     params.Content,
		Category:    params.Category,
		CreatedBy:   createdBy,
	}
	if err = validateDraft(draft); err != nil {
		return nil, err
	}

	p, err := s.repo.CreateVersion(ctx, params.ID, draft, s.now(), params.RowVersion)
	if err != nil {
		if errors.Is(err, domain.ErrPromptConflict) {
			s.logger.Warn("prompt version conflict", zap.Int64(logger.FieldPromptID, params.ID))
		}
		return nil, s.mapRepoError(err, code.ErrorPromptCreateFailed)
	}

	s.logger.Info("prompt version created",
		zap.Int64(logger.FieldPromptID, p.ID),
		zap.Int64(logger.FieldLineageID, p.LineageID()),
		zap.Int(logger.FieldVersion, p.Version))
	return promptToDTO(p), nil
}

// Delete 删除记录
func (s *promptService) Delete(ctx context.Context, params *dto.PromptDeleteRequest) (out *dto.PromptDeleteDTO, err error) {
	defer func() { s.record("delete", err) }()

	promoted, err := s.repo.Delete(ctx, params.ID, params.RowVersion)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorPromptDeleteFailed)
	}

	fields := []zap.Field{zap.Int64(logger.FieldPromptID, params.ID), zap.String(logger.FieldAction, "delete")}
	if promoted != nil {
		fields = append(fields, zap.Int64("promotedId", promoted.ID), zap.Int(logger.FieldVersion, promoted.Version))
	}
	s.logger.Info("prompt deleted", fields...)

	return &dto.PromptDeleteDTO{DeletedID: params.ID, Promoted: promptToDTO(promoted)}, nil
}

// Diff 两个版本内容的差异，两者必须属于同一版本链
func (s *promptService) Diff(ctx context.Context, fromID, toID int64) (*dto.PromptDiffDTO, error) {
	from, err := s.repo.GetByID(ctx, fromID)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	to, err := s.repo.GetByID(ctx, toID)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	if from.LineageID() != to.LineageID() {
		return nil, code.ErrorPromptLineageMixed
	}

	res := diff.Compute(from.Content, to.Content)
	if patched, ok := diff.Apply(from.Content, res.Patch); !ok || patched != to.Content {
		s.logger.Error("prompt diff patch does not reproduce target",
			zap.Int64(logger.FieldPromptID, fromID), zap.Int64("toId", toID))
		return nil, code.ErrorPromptDiffFailed
	}
	out := &dto.PromptDiffDTO{
		From:       promptToDTO(from),
		To:         promptToDTO(to),
		Segments:   make([]dto.DiffSegmentDTO, 0, len(res.Segments)),
		Patch:      res.Patch,
		Insertions: res.Insertions,
		Deletions:  res.Deletions,
		Distance:   res.Distance,
	}
	for _, seg := range res.Segments {
		out.Segments = append(out.Segments, dto.DiffSegmentDTO{Op: string(seg.Op), Text: seg.Text})
	}
	return out, nil
}
