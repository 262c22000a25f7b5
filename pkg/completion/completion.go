// Package completion 对话补全客户端边界
// Package completion is the chat-completion client boundary. Requests go to an OpenAI compatible
// endpoint (Groq by default); upstream failures surface as *APIError carrying only type and message.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultBaseURL Groq 的 OpenAI 兼容接口地址
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// UnknownErrorType 上游未返回错误类型时使用
const UnknownErrorType = "unknown_error"

// UnknownErrorMessage 未知错误对外的消息，原始错误只进日志
const UnknownErrorMessage = "the chat service is unavailable, please try again later"

// ErrStreamingUnsupported 不支持流式补全
var ErrStreamingUnsupported = errors.New("streaming chat completions are not supported")

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request 补全请求，可选参数为 nil 时使用上游默认值
type Request struct {
	Messages    []Message
	Model       string
	Temperature *float32
	MaxTokens   *int
	TopP        *float32
	Stream      bool
	Stop        []string
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finishReason"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

type Response struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	Choices   []Choice  `json:"choices"`
	Usage     Usage     `json:"usage"`
}

// Content 第一个选项的回复内容
func (r *Response) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// APIError 上游返回的非成功响应
type APIError struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"` // 原始错误，仅用于日志
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat completion failed (%s): %s", e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client 对话补全客户端
type Client interface {
	CreateChatCompletion(ctx context.Context, req Request) (*Response, error)
}

// Float32 / Int 构造可选参数
func Float32(v float32) *float32 { return &v }
func Int(v int) *int             { return &v }
