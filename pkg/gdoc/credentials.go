// Package gdoc 文档创建客户端边界：把 Markdown 转成 Google Doc
package gdoc

import (
	"errors"
	"strings"

	"github.com/bytedance/sonic"
)

// ServiceAccountType 唯一接受的凭据类型
const ServiceAccountType = "service_account"

// ErrInvalidCredentials 凭据不是结构完整的服务账号 JSON
var ErrInvalidCredentials = errors.New("invalid service account credentials")

// Credentials 服务账号 JSON 中校验关心的字段
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id,omitempty"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// ParseCredentials 解析并做结构校验，只检查字段存在，不检查签名能力
func ParseCredentials(raw []byte) (*Credentials, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidCredentials
	}

	var c Credentials
	if err := sonic.Unmarshal(raw, &c); err != nil {
		return nil, ErrInvalidCredentials
	}

	if c.Type != ServiceAccountType {
		return nil, ErrInvalidCredentials
	}
	for _, v := range []string{c.ProjectID, c.PrivateKeyID, c.PrivateKey, c.ClientEmail} {
		if strings.TrimSpace(v) == "" {
			return nil, ErrInvalidCredentials
		}
	}
	return &c, nil
}

// ValidateCredentials 凭据是否结构有效
func ValidateCredentials(raw []byte) bool {
	_, err := ParseCredentials(raw)
	return err == nil
}
