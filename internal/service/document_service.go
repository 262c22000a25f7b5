package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	"github.com/haierkeys/agent-scrum-service/pkg/gdoc"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"
	"github.com/haierkeys/agent-scrum-service/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// DefaultDocumentPrefix 导出文档名前缀
const DefaultDocumentPrefix = "agent-scrum-"

// DocumentService 定义文档业务服务接口
type DocumentService interface {
	// Create 使用用户凭据创建文档
	Create(ctx context.Context, uid int64, params *dto.DocumentCreateRequest) (*dto.DocumentDTO, error)

	// ExportPrompt 将提示词导出为文档，文档名为前缀加随机 UUID
	ExportPrompt(ctx context.Context, uid int64, params *dto.PromptExportRequest) (*dto.DocumentDTO, error)
}

// documentService 实现 DocumentService 接口
type documentService struct {
	client      gdoc.Client
	credentials CredentialService
	promptRepo  domain.PromptRepository
	logger      *zap.Logger
	prefix      string
	sf          *singleflight.Group
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(client gdoc.Client, credentials CredentialService, promptRepo domain.PromptRepository, logger *zap.Logger, config *ServiceConfig) DocumentService {
	prefix := config.Document.NamePrefix
	if prefix == "" {
		prefix = DefaultDocumentPrefix
	}
	return &documentService{
		client:      client,
		credentials: credentials,
		promptRepo:  promptRepo,
		logger:      logger,
		prefix:      prefix,
		sf:          &singleflight.Group{},
	}
}

// loadCredentials 同一用户的并发请求只读一次凭据
func (s *documentService) loadCredentials(ctx context.Context, uid int64) ([]byte, error) {
	v, err := sharedDo(ctx, s.sf, "credential:"+strconv.FormatInt(uid, 10), func(ctx context.Context) (interface{}, error) {
		return s.credentials.Load(ctx, uid)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Create 创建文档
func (s *documentService) Create(ctx context.Context, uid int64, params *dto.DocumentCreateRequest) (*dto.DocumentDTO, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, code.ErrorDocumentNameEmpty
	}
	return s.create(ctx, uid, name, params.Markdown, params.ShareWith)
}

// ExportPrompt 导出提示词
func (s *documentService) ExportPrompt(ctx context.Context, uid int64, params *dto.PromptExportRequest) (*dto.DocumentDTO, error) {
	p, err := s.promptRepo.GetByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorPromptNotFound
		}
		return nil, code.ErrorDBQuery
	}

	var b strings.Builder
	b.WriteString("# " + p.Name + "\n\n")
	if p.Description != "" {
		b.WriteString("_" + p.Description + "_\n\n")
	}
	b.WriteString("Version " + strconv.Itoa(p.Version))
	if p.Category != "" {
		b.WriteString(" · " + p.Category)
	}
	b.WriteString("\n\n")
	b.WriteString(p.Content)
	b.WriteString("\n")

	return s.create(ctx, uid, s.prefix+uuid.NewString(), b.String(), params.ShareWith)
}

func (s *documentService) create(ctx context.Context, uid int64, name, markdown, shareWith string) (*dto.DocumentDTO, error) {
	creds, err := s.loadCredentials(ctx, uid)
	if err != nil {
		return nil, err
	}

	doc, err := s.client.CreateDocument(ctx, creds, name, markdown, shareWith)
	if err != nil {
		var apiErr *gdoc.APIError
		if !errors.As(err, &apiErr) {
			if errors.Is(err, gdoc.ErrInvalidCredentials) {
				return nil, code.ErrorCredentialInvalid
			}
			apiErr = &gdoc.APIError{Type: gdoc.UnknownErrorType, Message: gdoc.UnknownErrorMessage, Err: err}
		}
		metrics.UpstreamErrors.WithLabelValues("document", apiErr.Type).Inc()
		s.logger.Error("document create failed",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldUpstreamType, apiErr.Type),
			zap.String("upstreamMessage", apiErr.Message),
			zap.Error(err))
		// 文档已创建但共享失败时仍返回文档
		if doc == nil {
			message := apiErr.Message
			if apiErr.Type == gdoc.UnknownErrorType {
				message = gdoc.UnknownErrorMessage
			}
			return nil, code.ErrorDocumentCreateFailed.WithDetails(apiErr.Type, message)
		}
	}

	s.logger.Info("document created",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldDocumentID, doc.ID))
	return &dto.DocumentDTO{ID: doc.ID, Link: doc.Link, Name: name}, nil
}
