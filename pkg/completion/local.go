package completion

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalModel 本地规则回复器的模型名
const LocalModel = "local-rules"

// localClient 未配置 API Key 时使用的规则回复器
type localClient struct {
	now func() time.Time
}

// NewLocalClient 基于关键字的本地回复器，不访问网络
func NewLocalClient() Client {
	return &localClient{now: time.Now}
}

func (c *localClient) CreateChatCompletion(ctx context.Context, req Request) (*Response, error) {
	if req.Stream {
		return nil, ErrStreamingUnsupported
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			last = req.Messages[i].Content
			break
		}
	}

	reply := RuleReply(last)
	return &Response{
		ID:        "local-" + uuid.NewString(),
		Model:     LocalModel,
		CreatedAt: c.now(),
		Choices: []Choice{{
			Index:        0,
			Message:      Message{Role: RoleAssistant, Content: reply},
			FinishReason: "stop",
		}},
	}, nil
}

// RuleReply 按关键字生成回复，大小写不敏感，优先级 hello/hi > help > thank
func RuleReply(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! How can I help you today?"
	case strings.Contains(lower, "help"):
		return "I'm here to help! What do you need assistance with?"
	case strings.Contains(lower, "thank"):
		return "You're welcome! Is there anything else I can help with?"
	default:
		return `I understand you said: "` + message + `". How can I assist you further with that?`
	}
}
