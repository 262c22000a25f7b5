package domain

import "time"

// Credential 用户上传的文档服务凭据（服务账号 JSON）
type Credential struct {
	ID              int64
	UID             int64
	CredentialsJSON string
	IsValid         bool
	UploadedAt      time.Time
	LastValidatedAt *time.Time
}
