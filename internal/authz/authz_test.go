package authz

import (
	"testing"

	"github.com/haierkeys/agent-scrum-service/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

const adminEmail = "admin@example.com"

func admin(claims ...string) Principal {
	p := Principal{
		Authenticated: true,
		Roles:         []string{domain.RoleAdmin},
		Email:         adminEmail,
		EmailVerified: true,
	}
	if len(claims) > 0 {
		p.Claims = map[string][]string{domain.ClaimPermission: claims}
	}
	return p
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		policy    Policy
		allowed   bool
		failed    string
	}{
		{
			name:      "unauthenticated denied even with roles",
			principal: Principal{Roles: []string{domain.RoleAdmin}},
			policy:    RequireAdminRole,
			failed:    "authenticated",
		},
		{
			name:      "admin role allowed",
			principal: admin(),
			policy:    RequireAdminRole,
			allowed:   true,
		},
		{
			name:      "missing role denied",
			principal: Principal{Authenticated: true, Roles: []string{"User"}},
			policy:    RequireAdminRole,
			failed:    "role:Admin",
		},
		{
			name:      "claim present",
			principal: admin(domain.PermissionManageUsers),
			policy:    CanManageUsers,
			allowed:   true,
		},
		{
			name:      "claim with another value denied",
			principal: admin(domain.PermissionViewReports),
			policy:    CanManageUsers,
			failed:    "claim:Permission=ManageUsers",
		},
		{
			name: "claim value under other key denied",
			principal: Principal{
				Authenticated: true,
				Roles:         []string{domain.RoleAdmin},
				Claims:        map[string][]string{"Scope": {domain.PermissionManageUsers}},
			},
			policy: CanManageUsers,
			failed: "claim:Permission=ManageUsers",
		},
		{
			name: "claim without role denied",
			principal: Principal{
				Authenticated: true,
				Claims:        map[string][]string{domain.ClaimPermission: {domain.PermissionViewReports}},
			},
			policy: CanViewReports,
			failed: "role:Admin",
		},
		{
			name:      "super admin matches verified email",
			principal: admin(),
			policy:    SuperAdminOnly,
			allowed:   true,
		},
		{
			name: "super admin requires exact email",
			principal: Principal{
				Authenticated: true, Roles: []string{domain.RoleAdmin},
				Email: "Admin@Example.com", EmailVerified: true,
			},
			policy: SuperAdminOnly,
			failed: "identity:admin-email",
		},
		{
			name: "unverified email denied",
			principal: Principal{
				Authenticated: true, Roles: []string{domain.RoleAdmin},
				Email: adminEmail,
			},
			policy: SuperAdminOnly,
			failed: "identity:admin-email",
		},
		{
			name: "identity match does not replace role",
			principal: Principal{
				Authenticated: true, Email: adminEmail, EmailVerified: true,
			},
			policy: SuperAdminOnly,
			failed: "role:Admin",
		},
		{
			name:      "combined policies all satisfied",
			principal: admin(domain.PermissionManageUsers),
			policy:    And(RequireAdminRole, CanManageUsers),
			allowed:   true,
		},
		{
			name:      "combined policies one unsatisfied",
			principal: admin(domain.PermissionViewReports),
			policy:    And(RequireAdminRole, CanManageUsers),
			failed:    "claim:Permission=ManageUsers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.principal, tt.policy, adminEmail)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.failed, d.Failed)
		})
	}
}

func TestIdentityRequiresConfiguredEmail(t *testing.T) {
	p := Principal{Authenticated: true, Roles: []string{domain.RoleAdmin}, EmailVerified: true}
	assert.False(t, Allowed(p, SuperAdminOnly, ""))
}

func TestAndName(t *testing.T) {
	assert.Equal(t, "RequireAdminRole+CanManageUsers", And(RequireAdminRole, CanManageUsers).Name)
}

// 组合策略允许当且仅当每个子策略都允许
func TestAndIsConjunctionProperty(t *testing.T) {
	policies := []Policy{RequireAdminRole, CanManageUsers, CanViewReports, CanManageSettings, SuperAdminOnly}
	perms := []string{domain.PermissionManageUsers, domain.PermissionViewReports, domain.PermissionManageSettings}

	properties := gopter.NewProperties(nil)
	properties.Property("And equals conjunction", prop.ForAll(
		func(authn, isAdmin, verified bool, permMask uint8, i, j int) bool {
			p := Principal{Authenticated: authn, Email: adminEmail, EmailVerified: verified}
			if isAdmin {
				p.Roles = []string{domain.RoleAdmin}
			}
			for k, perm := range perms {
				if permMask&(1<<k) != 0 {
					if p.Claims == nil {
						p.Claims = map[string][]string{}
					}
					p.Claims[domain.ClaimPermission] = append(p.Claims[domain.ClaimPermission], perm)
				}
			}
			a, b := policies[i], policies[j]
			want := Allowed(p, a, adminEmail) && Allowed(p, b, adminEmail)
			return Allowed(p, And(a, b), adminEmail) == want
		},
		gen.Bool(), gen.Bool(), gen.Bool(), gen.UInt8Range(0, 7),
		gen.IntRange(0, len(policies)-1), gen.IntRange(0, len(policies)-1),
	))
	properties.TestingRun(t)
}
