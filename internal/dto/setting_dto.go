package dto

import "time"

// CredentialUploadRequest Credential upload parameters
// 上传凭据请求参数
type CredentialUploadRequest struct {
	CredentialsJSON string `json:"credentialsJson" form:"credentialsJson" binding:"required"`
}

// CredentialStatusDTO Credential status
// 凭据状态
type CredentialStatusDTO struct {
	Exists          bool       `json:"exists"`
	IsValid         bool       `json:"isValid"`
	UploadedAt      *time.Time `json:"uploadedAt"`
	LastValidatedAt *time.Time `json:"lastValidatedAt"`
	Message         string     `json:"message"`
}
