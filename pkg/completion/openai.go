package completion

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// Config OpenAI 兼容客户端配置
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type openAIClient struct {
	client *openai.Client
	model  string
}

// NewClient 创建 OpenAI 兼容的补全客户端，BaseURL 为空时使用 Groq
func NewClient(cfg Config) Client {
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		conf.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &openAIClient{
		client: openai.NewClientWithConfig(conf),
		model:  cfg.Model,
	}
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, req Request) (*Response, error) {
	if req.Stream {
		return nil, ErrStreamingUnsupported
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	oreq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}
	if req.TopP != nil {
		oreq.TopP = *req.TopP
	}
	if req.MaxTokens != nil {
		oreq.MaxTokens = *req.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, oreq)
	if err != nil {
		return nil, toAPIError(err)
	}

	out := &Response{
		ID:        resp.ID,
		Model:     resp.Model,
		CreatedAt: time.Unix(resp.Created, 0),
		Choices:   make([]Choice, 0, len(resp.Choices)),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, ch := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Index:        ch.Index,
			Message:      Message{Role: Role(ch.Message.Role), Content: ch.Message.Content},
			FinishReason: string(ch.FinishReason),
		})
	}
	return out, nil
}

// toAPIError 统一转换为 *APIError，上下文取消原样返回
func toAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		t := apiErr.Type
		if t == "" {
			t = UnknownErrorType
		}
		return &APIError{Message: apiErr.Message, Type: t, StatusCode: apiErr.HTTPStatusCode}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Message: UnknownErrorMessage, Type: UnknownErrorType, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return &APIError{Message: UnknownErrorMessage, Type: UnknownErrorType, Err: err}
}
