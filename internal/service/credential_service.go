package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	"github.com/haierkeys/agent-scrum-service/pkg/gdoc"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 凭据状态提示
const (
	CredentialMessageMissing = "No credentials uploaded. Upload a Google service account JSON to enable document export."
	CredentialMessageInvalid = "Stored credentials are invalid. Please upload a new service account JSON."
	CredentialMessageValid   = "Credentials are valid."
)

// DefaultCredentialMaxSize 默认凭据大小上限
const DefaultCredentialMaxSize int64 = 64 << 10

// CredentialService 定义凭据业务服务接口
type CredentialService interface {
	// Upload 校验并保存凭据，每个用户只保留一份
	Upload(ctx context.Context, uid int64, raw []byte) (*dto.CredentialStatusDTO, error)

	// Status 获取凭据状态
	Status(ctx context.Context, uid int64) (*dto.CredentialStatusDTO, error)

	// Load 读取有效凭据原文，供文档创建使用
	Load(ctx context.Context, uid int64) ([]byte, error)

	// Revalidate 重新校验一条凭据并记录结果
	Revalidate(ctx context.Context, c *domain.Credential) (bool, error)

	// ListAll 所有已保存的凭据
	ListAll(ctx context.Context) ([]*domain.Credential, error)
}

// credentialService 实现 CredentialService 接口
type credentialService struct {
	repo    domain.CredentialRepository
	logger  *zap.Logger
	maxSize int64
	now     func() time.Time
}

// NewCredentialService 创建 CredentialService 实例
func NewCredentialService(repo domain.CredentialRepository, logger *zap.Logger, config *ServiceConfig) CredentialService {
	maxSize := config.Document.CredentialMaxSize
	if maxSize <= 0 {
		maxSize = DefaultCredentialMaxSize
	}
	return &credentialService{repo: repo, logger: logger, maxSize: maxSize, now: time.Now}
}

func credentialStatus(c *domain.Credential) *dto.CredentialStatusDTO {
	if c == nil {
		return &dto.CredentialStatusDTO{Message: CredentialMessageMissing}
	}
	out := &dto.CredentialStatusDTO{Exists: true, IsValid: c.IsValid, LastValidatedAt: c.LastValidatedAt}
	uploaded := c.UploadedAt
	out.UploadedAt = &uploaded
	if c.IsValid {
		out.Message = CredentialMessageValid
	} else {
		out.Message = CredentialMessageInvalid
	}
	return out
}

// Upload 校验并保存凭据
func (s *credentialService) Upload(ctx context.Context, uid int64, raw []byte) (*dto.CredentialStatusDTO, error) {
	if len(raw) == 0 {
		return nil, code.ErrorCredentialMissing
	}
	if int64(len(raw)) > s.maxSize {
		return nil, code.ErrorCredentialTooLarge.WithDetails("max " + strconv.FormatInt(s.maxSize, 10) + " bytes")
	}
	if !gdoc.ValidateCredentials(raw) {
		return nil, code.ErrorCredentialInvalid
	}

	now := s.now().UTC()
	saved, err := s.repo.Upsert(ctx, &domain.Credential{
		UID:             uid,
		CredentialsJSON: string(raw),
		IsValid:         true,
		UploadedAt:      now,
		LastValidatedAt: &now,
	})
	if err != nil {
		s.logger.Error("credential save failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, code.ErrorCredentialSaveFailed
	}

	s.logger.Info("credential uploaded", zap.Int64(logger.FieldUID, uid))
	return credentialStatus(saved), nil
}

// Status 获取凭据状态
func (s *credentialService) Status(ctx context.Context, uid int64) (*dto.CredentialStatusDTO, error) {
	c, err := s.repo.GetByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return credentialStatus(nil), nil
	}
	if err != nil {
		return nil, code.ErrorDBQuery
	}
	return credentialStatus(c), nil
}

// Load 读取有效凭据
func (s *credentialService) Load(ctx context.Context, uid int64) ([]byte, error) {
	c, err := s.repo.GetByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorCredentialNotFound
	}
	if err != nil {
		return nil, code.ErrorDBQuery
	}
	if !c.IsValid {
		return nil, code.ErrorCredentialNotAvailable
	}
	return []byte(c.CredentialsJSON), nil
}

// Revalidate 重新校验并更新 IsValid 与 LastValidatedAt
func (s *credentialService) Revalidate(ctx context.Context, c *domain.Credential) (bool, error) {
	valid := gdoc.ValidateCredentials([]byte(c.CredentialsJSON))
	if err := s.repo.UpdateValidation(ctx, c.ID, valid, s.now().UTC()); err != nil {
		return valid, err
	}
	if valid != c.IsValid {
		s.logger.Info("credential validity changed",
			zap.Int64(logger.FieldUID, c.UID), zap.Bool("isValid", valid))
	}
	return valid, nil
}

// ListAll 所有已保存的凭据
func (s *credentialService) ListAll(ctx context.Context) ([]*domain.Credential, error) {
	return s.repo.List(ctx)
}
