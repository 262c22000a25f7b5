package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (UserService, domain.UserRepository, app.TokenManager) {
	repo := dao.NewUserRepository(newTestRepos(t).dao)
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "test", Expiry: time.Hour})
	return NewUserService(repo, tm, nop, testConfig()), repo, tm
}

func TestUserService_SeedAdminIsIdempotent(t *testing.T) {
	svc, repo, _ := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx))
	require.NoError(t, svc.SeedAdmin(ctx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, []string{domain.RoleAdmin}, u.Roles)
	assert.Len(t, u.Claims, 3)
	assert.Equal(t, "admin", u.Username)
}

func TestUserService_SeedAdminCompletesExistingGrants(t *testing.T) {
	svc, repo, _ := newUserService(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Email: "admin@example.com", Username: "boss", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.SeedAdmin(ctx))

	u, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, u.HasRole(domain.RoleAdmin))
	assert.ElementsMatch(t,
		[]string{domain.PermissionManageUsers, domain.PermissionViewReports, domain.PermissionManageSettings},
		u.ClaimMap()[domain.ClaimPermission])
}

func TestUserService_LoginIssuesClaims(t *testing.T) {
	svc, _, tm := newUserService(t)
	ctx := context.Background()
	require.NoError(t, svc.SeedAdmin(ctx))

	for _, cred := range []string{"admin@example.com", "admin"} {
		out, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: cred, Password: "secret123"}, "127.0.0.1")
		require.NoError(t, err)
		require.NotEmpty(t, out.Token)

		entity, err := tm.Parse(out.Token)
		require.NoError(t, err)
		assert.Equal(t, out.UID, entity.UID)
		assert.True(t, entity.EmailVerified)
		assert.Contains(t, entity.Roles, domain.RoleAdmin)
		assert.Contains(t, entity.Claims[domain.ClaimPermission], domain.PermissionManageUsers)
	}
}

func TestUserService_LoginFailures(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()
	require.NoError(t, svc.SeedAdmin(ctx))

	_, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "admin@example.com", Password: "wrong"}, "")
	assertCode(t, err, code.ErrorUserLoginFailed)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "nobody", Password: "secret123"}, "")
	assertCode(t, err, code.ErrorUserLoginFailed)
}

func TestUserService_CreateAndList(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, &dto.UserCreateRequest{Email: "bob@example.com", Username: "bob_1", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, u.Roles)

	_, err = svc.Create(ctx, &dto.UserCreateRequest{Email: "bob@example.com", Username: "bob_2", Password: "secret1"})
	assertCode(t, err, code.ErrorUserAlreadyExists)

	_, err = svc.Create(ctx, &dto.UserCreateRequest{Email: "c@example.com", Username: "x!", Password: "secret1"})
	assertCode(t, err, code.ErrorUserUsernameInvalid)

	list, total, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "bob_1", list[0].Username)

	_, err = svc.GetInfo(ctx, 999)
	assertCode(t, err, code.ErrorUserNotFound)
}

func TestSeedUsername(t *testing.T) {
	assert.Equal(t, "john_doe", seedUsername("john_doe@example.com"))
	assert.Equal(t, "jd1", seedUsername("j.d-1@example.com"))
	assert.Equal(t, "admin", seedUsername("a@example.com"))
}

// 邮箱在入库与登录时统一转小写，令牌里的邮箱可直接与管理员邮箱做相等比较
func TestUserService_EmailNormalized(t *testing.T) {
	repo := dao.NewUserRepository(newTestRepos(t).dao)
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "test", Expiry: time.Hour})
	cfg := testConfig()
	cfg.Security.AdminEmail = " Admin@Example.COM "
	svc := NewUserService(repo, tm, nop, cfg)
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx))
	u, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)

	out, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "ADMIN@example.com", Password: "secret123"}, "")
	require.NoError(t, err)
	entity, err := tm.Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", entity.Email)

	bob, err := svc.Create(ctx, &dto.UserCreateRequest{Email: "Bob@Example.com", Username: "bob_1", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", bob.Email)

	_, err = svc.Create(ctx, &dto.UserCreateRequest{Email: "bob@example.com", Username: "bob_2", Password: "secret1"})
	assertCode(t, err, code.ErrorUserAlreadyExists)
}
