// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Security SecurityServiceConfig // Admin identity and seeding // 管理员身份与初始化
	Chat     ChatServiceConfig     // Chat related config // 对话相关配置
	Document DocumentServiceConfig // Document related config // 文档相关配置
}

// SecurityServiceConfig admin identity configuration
// SecurityServiceConfig 管理员身份配置
type SecurityServiceConfig struct {
	AdminEmail    string // Verified email granted SuperAdminOnly // 可通过 SuperAdminOnly 的已验证邮箱
	AdminPassword string // Seeded admin password // 初始化管理员密码
}

// ChatServiceConfig chat service configuration
// ChatServiceConfig 对话服务配置
type ChatServiceConfig struct {
	Model              string
	Temperature        *float32
	MaxTokens          *int
	TopP               *float32
	HistoryMaxMessages int           // Messages kept per user // 每个用户保留的消息数
	HistoryTTL         time.Duration // History lifetime // 历史保留时长
}

// DocumentServiceConfig document service configuration
// DocumentServiceConfig 文档服务配置
type DocumentServiceConfig struct {
	CredentialMaxSize int64  // Max credential blob size in bytes // 凭据最大字节数
	NamePrefix        string // Exported document name prefix // 导出文档名前缀
}
