package domain

import "time"

// 角色与声明常量
const (
	RoleAdmin = "Admin"

	ClaimPermission = "Permission"

	PermissionManageUsers    = "ManageUsers"
	PermissionViewReports    = "ViewReports"
	PermissionManageSettings = "ManageSettings"
)

// Claim 用户声明（键值对，同一键可有多个值）
type Claim struct {
	Type  string
	Value string
}

// User 用户领域模型
type User struct {
	UID           int64
	Email         string
	Username      string
	Password      string
	EmailVerified bool
	Roles         []string
	Claims        []Claim
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasRole 判断用户是否拥有角色
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ClaimMap 声明按键分组
func (u *User) ClaimMap() map[string][]string {
	if len(u.Claims) == 0 {
		return nil
	}
	out := make(map[string][]string, len(u.Claims))
	for _, c := range u.Claims {
		out[c.Type] = append(out[c.Type], c.Value)
	}
	return out
}
