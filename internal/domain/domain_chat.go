package domain

import "time"

// 对话角色
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatGreeting 新会话的第一条助手消息
const ChatGreeting = "Hello! How can I assist you today?"

// ChatMessage 一条对话消息
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
