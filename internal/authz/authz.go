// Package authz 管理操作的授权判定
//
// 判定是纯函数：输入主体、策略和配置的管理员邮箱，输出允许或拒绝，不跨请求缓存。
package authz

import (
	"strings"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
)

// Principal 发起请求的主体
type Principal struct {
	Authenticated bool
	Roles         []string
	// Claims 声明，键对应多个值
	Claims        map[string][]string
	Email         string
	EmailVerified bool
}

// HasRole 是否拥有角色
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasClaim 是否拥有键与值都完全匹配的声明
func (p Principal) HasClaim(key, value string) bool {
	for _, v := range p.Claims[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Requirement 单个授权条件，满足时返回 true
type Requirement interface {
	Satisfied(p Principal, adminEmail string) bool
	String() string
}

type roleRequirement struct{ role string }

func (r roleRequirement) Satisfied(p Principal, _ string) bool { return p.HasRole(r.role) }
func (r roleRequirement) String() string                       { return "role:" + r.role }

type claimRequirement struct{ key, value string }

func (r claimRequirement) Satisfied(p Principal, _ string) bool { return p.HasClaim(r.key, r.value) }
func (r claimRequirement) String() string                       { return "claim:" + r.key + "=" + r.value }

type identityRequirement struct{}

// 邮箱必须已验证，且与配置的管理员邮箱相等；两者在入库与加载配置时已规范化
func (identityRequirement) Satisfied(p Principal, adminEmail string) bool {
	if !p.EmailVerified || adminEmail == "" || p.Email == "" {
		return false
	}
	return p.Email == adminEmail
}
func (identityRequirement) String() string { return "identity:admin-email" }

// RequireRole 要求拥有角色
func RequireRole(role string) Requirement { return roleRequirement{role: role} }

// RequireClaim 要求拥有声明
func RequireClaim(key, value string) Requirement { return claimRequirement{key: key, value: value} }

// RequireAdminIdentity 要求已验证邮箱等于配置的管理员邮箱
func RequireAdminIdentity() Requirement { return identityRequirement{} }

// Policy 命名策略，所有条件同时满足才允许
type Policy struct {
	Name         string
	Requirements []Requirement
}

// And 组合多个策略，名称用 + 连接
func And(policies ...Policy) Policy {
	out := Policy{}
	names := make([]string, 0, len(policies))
	for _, p := range policies {
		names = append(names, p.Name)
		out.Requirements = append(out.Requirements, p.Requirements...)
	}
	out.Name = strings.Join(names, "+")
	return out
}

// Decision 判定结果
type Decision struct {
	Allowed bool
	// Failed 未满足的第一个条件；未认证时为 "authenticated"
	Failed string
}

// Evaluate 判定主体能否执行受策略保护的操作
func Evaluate(p Principal, policy Policy, adminEmail string) Decision {
	if !p.Authenticated {
		return Decision{Failed: "authenticated"}
	}
	for _, req := range policy.Requirements {
		if !req.Satisfied(p, adminEmail) {
			return Decision{Failed: req.String()}
		}
	}
	return Decision{Allowed: true}
}

// Allowed Evaluate 的简写
func Allowed(p Principal, policy Policy, adminEmail string) bool {
	return Evaluate(p, policy, adminEmail).Allowed
}

// 命名策略
var (
	RequireAdminRole = Policy{
		Name:         "RequireAdminRole",
		Requirements: []Requirement{RequireRole(domain.RoleAdmin)},
	}
	CanManageUsers = Policy{
		Name: "CanManageUsers",
		Requirements: []Requirement{
			RequireRole(domain.RoleAdmin),
			RequireClaim(domain.ClaimPermission, domain.PermissionManageUsers),
		},
	}
	CanViewReports = Policy{
		Name: "CanViewReports",
		Requirements: []Requirement{
			RequireRole(domain.RoleAdmin),
			RequireClaim(domain.ClaimPermission, domain.PermissionViewReports),
		},
	}
	CanManageSettings = Policy{
		Name: "CanManageSettings",
		Requirements: []Requirement{
			RequireRole(domain.RoleAdmin),
			RequireClaim(domain.ClaimPermission, domain.PermissionManageSettings),
		},
	}
	SuperAdminOnly = Policy{
		Name: "SuperAdminOnly",
		Requirements: []Requirement{
			RequireRole(domain.RoleAdmin),
			RequireAdminIdentity(),
		},
	}
)

// Named 全部命名策略，按声明顺序
func Named() []Policy {
	return []Policy{RequireAdminRole, CanManageUsers, CanViewReports, CanManageSettings, SuperAdminOnly}
}
