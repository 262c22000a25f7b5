package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/authz"
	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/pkg/app"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminEmail = "admin@example.com"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokenManager() app.TokenManager {
	return app.NewTokenManager(app.TokenConfig{SecretKey: "mw-test", Expiry: time.Hour})
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) app.Res {
	t.Helper()
	var res app.Res
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestAuthorize(t *testing.T) {
	tm := newTokenManager()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if tok := tokenFromRequest(c); tok != "" {
			if u, err := tm.Parse(tok); err == nil {
				c.Set(app.UserTokenKey, u)
			}
		}
	})
	r.GET("/users", Authorize(authz.CanManageUsers, testAdminEmail, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/system", Authorize(authz.SuperAdminOnly, testAdminEmail, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	token := func(u app.UserEntity) string {
		s, err := tm.Generate(u)
		require.NoError(t, err)
		return "Bearer " + s
	}
	adminWithClaim := token(app.UserEntity{
		UID: 1, Email: testAdminEmail, EmailVerified: true,
		Roles:  []string{domain.RoleAdmin},
		Claims: map[string][]string{domain.ClaimPermission: {domain.PermissionManageUsers}},
	})
	adminNoClaim := token(app.UserEntity{UID: 2, Email: "other@example.com", EmailVerified: true, Roles: []string{domain.RoleAdmin}})

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"anonymous", "/users", "", http.StatusUnauthorized},
		{"admin with claim", "/users", adminWithClaim, http.StatusOK},
		{"admin without claim", "/users", adminNoClaim, http.StatusForbidden},
		{"super admin email matches", "/system", adminWithClaim, http.StatusOK},
		{"super admin other email", "/system", adminNoClaim, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			assert.Equal(t, tt.status, do(r, req).Code)
		})
	}
}

func TestUserAuthToken(t *testing.T) {
	tm := newTokenManager()
	r := gin.New()
	r.GET("/me", UserAuthToken(tm), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": app.GetUID(c)})
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me?token=garbage", nil)
	w = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 402, decode(t, w).Code)

	tok, err := tm.Generate(app.UserEntity{UID: 9})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":9}`, w.Body.String())
}

func TestLangWithTranslator(t *testing.T) {
	enT := en.New()
	uni := ut.New(enT, enT, zh.New())

	r := gin.New()
	r.Use(LangWithTranslator(uni))
	r.GET("/", func(c *gin.Context) {
		trans, _ := c.Get(app.TransKey)
		c.JSON(http.StatusOK, gin.H{"lang": app.GetLang(c), "trans": trans.(ut.Translator).Locale()})
	})

	tests := []struct {
		header string
		lang   string
		trans  string
	}{
		{"zh-CN", "zh_cn", "zh"},
		{"en", "en", "en"},
		{"fr", "en", "en"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("lang", tt.header)
		w := do(r, req)
		assert.JSONEq(t, `{"lang":"`+tt.lang+`","trans":"`+tt.trans+`"}`, w.Body.String(), tt.header)
	}
}

func TestRecoveryHidesPanicValue(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("secret internals") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
	assert.False(t, decode(t, w).Status)
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(TraceConfig{Enabled: true}))
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetTraceIDFromGin(c), GetTraceID(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(DefaultTraceIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "given-id")
	w = do(r, req)
	assert.Equal(t, "given-id", w.Header().Get(DefaultTraceIDHeader))
}

func TestNoFound(t *testing.T) {
	r := gin.New()
	r.NoRoute(NoFound())

	w := do(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
