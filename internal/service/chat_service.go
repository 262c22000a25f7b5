package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	"github.com/haierkeys/agent-scrum-service/pkg/completion"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"
	"github.com/haierkeys/agent-scrum-service/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChatService 定义对话业务服务接口
type ChatService interface {
	// History 获取对话历史，新会话以问候语开头
	History(ctx context.Context, uid int64) (*dto.ChatHistoryDTO, error)

	// Send 发送消息并获取回复
	Send(ctx context.Context, uid int64, params *dto.ChatSendRequest) (*dto.ChatReplyDTO, error)

	// Clear 清空对话历史
	Clear(ctx context.Context, uid int64) error

	// Backend 当前使用的模型名称
	Backend() string
}

// chatService 实现 ChatService 接口
type chatService struct {
	client     completion.Client
	history    domain.ChatHistoryRepository
	promptRepo domain.PromptRepository
	logger     *zap.Logger
	config     ChatServiceConfig
	now        func() time.Time
}

// NewChatService 创建 ChatService 实例；client 为 nil 时使用本地规则回复
func NewChatService(client completion.Client, history domain.ChatHistoryRepository, promptRepo domain.PromptRepository, logger *zap.Logger, config *ServiceConfig) ChatService {
	cfg := config.Chat
	if client == nil {
		client = completion.NewLocalClient()
		cfg.Model = completion.LocalModel
	}
	return &chatService{
		client:     client,
		history:    history,
		promptRepo: promptRepo,
		logger:     logger,
		config:     cfg,
		now:        time.Now,
	}
}

func (s *chatService) Backend() string {
	return s.config.Model
}

func messagesToDTO(msgs []domain.ChatMessage) []dto.ChatMessageDTO {
	out := make([]dto.ChatMessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dto.ChatMessageDTO{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return out
}

// load 读取历史，为空时写入问候语
func (s *chatService) load(ctx context.Context, uid int64) ([]domain.ChatMessage, error) {
	msgs, err := s.history.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return msgs, nil
	}
	greeting := domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: domain.ChatGreeting, CreatedAt: s.now().UTC()}
	if err := s.history.Append(ctx, uid, greeting); err != nil {
		return nil, err
	}
	return []domain.ChatMessage{greeting}, nil
}

// History 获取对话历史
func (s *chatService) History(ctx context.Context, uid int64) (*dto.ChatHistoryDTO, error) {
	msgs, err := s.load(ctx, uid)
	if err != nil {
		s.logger.Error("chat history load failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, code.ErrorChatHistoryFailed
	}
	return &dto.ChatHistoryDTO{Messages: messagesToDTO(msgs)}, nil
}

// systemPrompt 取 promptID 所在版本链的当前版本内容
func (s *chatService) systemPrompt(ctx context.Context, promptID int64) (string, error) {
	lineage, err := s.promptRepo.GetLineage(ctx, promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", code.ErrorPromptNotFound
		}
		return "", code.ErrorDBQuery
	}
	for _, p := range lineage {
		if p.IsCurrentVersion {
			return p.Content, nil
		}
	}
	return "", code.ErrorPromptVersionAbsent
}

// Send 发送消息；上游失败时历史不变
func (s *chatService) Send(ctx context.Context, uid int64, params *dto.ChatSendRequest) (*dto.ChatReplyDTO, error) {
	text := strings.TrimSpace(params.Message)
	if text == "" {
		return nil, code.ErrorChatMessageEmpty
	}

	msgs, err := s.load(ctx, uid)
	if err != nil {
		s.logger.Error("chat history load failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, code.ErrorChatHistoryFailed
	}

	userMsg := domain.ChatMessage{Role: domain.ChatRoleUser, Content: text, CreatedAt: s.now().UTC()}

	req := completion.Request{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		TopP:        s.config.TopP,
	}
	if params.PromptID > 0 {
		system, err := s.systemPrompt(ctx, params.PromptID)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, completion.Message{Role: completion.RoleSystem, Content: system})
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, completion.Message{Role: completion.Role(m.Role), Content: m.Content})
	}
	req.Messages = append(req.Messages, completion.Message{Role: completion.RoleUser, Content: text})

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, s.upstreamError(uid, err)
	}

	reply := domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: resp.Content(), CreatedAt: s.now().UTC()}
	if err := s.history.Append(ctx, uid, userMsg, reply); err != nil {
		s.logger.Error("chat history append failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, code.ErrorChatHistoryFailed
	}

	msgs = append(msgs, userMsg, reply)
	if limit := s.config.HistoryMaxMessages; limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	return &dto.ChatReplyDTO{
		Reply:    dto.ChatMessageDTO{Role: reply.Role, Content: reply.Content, CreatedAt: reply.CreatedAt},
		Model:    resp.Model,
		Messages: messagesToDTO(msgs),
	}, nil
}

// upstreamError 记录上游错误，只向调用者暴露类型与消息
// 未知类型的错误对外使用统一消息，原始错误只写日志
func (s *chatService) upstreamError(uid int64, err error) error {
	var apiErr *completion.APIError
	if !errors.As(err, &apiErr) {
		apiErr = &completion.APIError{Type: completion.UnknownErrorType, Message: completion.UnknownErrorMessage, Err: err}
	}
	metrics.UpstreamErrors.WithLabelValues("completion", apiErr.Type).Inc()
	s.logger.Error("chat completion failed",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldUpstreamType, apiErr.Type),
		zap.String("upstreamMessage", apiErr.Message),
		zap.Int("upstreamStatus", apiErr.StatusCode),
		zap.Error(err))

	message := apiErr.Message
	if apiErr.Type == completion.UnknownErrorType {
		message = completion.UnknownErrorMessage
	}
	return code.ErrorChatCompletionFailed.WithDetails(apiErr.Type, message)
}

// Clear 清空对话历史
func (s *chatService) Clear(ctx context.Context, uid int64) error {
	if err := s.history.Clear(ctx, uid); err != nil {
		s.logger.Error("chat history clear failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return code.ErrorChatHistoryFailed
	}
	return nil
}
