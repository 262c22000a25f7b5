package dto

import "time"

// ChatSendRequest Chat message request parameters
// 发送对话消息请求参数
type ChatSendRequest struct {
	Message  string `json:"message" form:"message" binding:"required"`
	PromptID int64  `json:"promptId" form:"promptId" binding:"omitempty,gt=0"` // Stored prompt used as system message // 作为系统消息的提示词
}

// ChatMessageDTO Chat message
// 对话消息
type ChatMessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatHistoryDTO Chat history
// 对话历史
type ChatHistoryDTO struct {
	Messages []ChatMessageDTO `json:"messages"`
}

// ChatReplyDTO Reply to one chat message
// 单条消息的回复
type ChatReplyDTO struct {
	Reply    ChatMessageDTO   `json:"reply"`
	Model    string           `json:"model"`
	Messages []ChatMessageDTO `json:"messages"`
}
