package dto

import "time"

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Credentials string `json:"credentials" form:"credentials" binding:"required"` // Username or Email // 登录凭证（用户名或邮件）
	Password    string `json:"password" form:"password" binding:"required"`       // Password // 密码
}

// UserCreateRequest Admin-side user creation parameters
// 管理端创建用户请求参数
type UserCreateRequest struct {
	Email    string   `json:"email" form:"email" binding:"required,email"`
	Username string   `json:"username" form:"username" binding:"required,username"`
	Password string   `json:"password" form:"password" binding:"required,min=6"`
	Roles    []string `json:"roles" form:"roles"`
}

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID           int64               `json:"uid"`
	Email         string              `json:"email"`
	Username      string              `json:"username"`
	EmailVerified bool                `json:"emailVerified"`
	Roles         []string            `json:"roles"`
	Claims        map[string][]string `json:"claims,omitempty" copier:"-"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// UserLoginDTO Login result
// 登录结果
type UserLoginDTO struct {
	UserDTO
	Token string `json:"token"`
}
