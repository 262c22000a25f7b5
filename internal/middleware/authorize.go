package middleware

import (
	"github.com/haierkeys/agent-scrum-service/internal/authz"
	"github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"
	"github.com/haierkeys/agent-scrum-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PrincipalKey gin.Context 中存储授权主体的键
const PrincipalKey = "principal"

// PrincipalFromEntity 由 Token 身份构造授权主体，nil 表示未认证
func PrincipalFromEntity(u *app.UserEntity) authz.Principal {
	if u == nil {
		return authz.Principal{}
	}
	return authz.Principal{
		Authenticated: true,
		Roles:         u.Roles,
		Claims:        u.Claims,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}
}

// GetPrincipal 当前请求的授权主体
func GetPrincipal(c *gin.Context) authz.Principal {
	return PrincipalFromEntity(app.GetUserEntity(c))
}

// Authorize 按策略放行；未认证返回 401，策略不满足返回 403
func Authorize(policy authz.Policy, adminEmail string, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		d := authz.Evaluate(p, policy, adminEmail)

		if d.Allowed {
			metrics.AuthzDecisions.WithLabelValues(policy.Name, "allow").Inc()
			c.Set(PrincipalKey, p)
			c.Next()
			return
		}

		metrics.AuthzDecisions.WithLabelValues(policy.Name, "deny").Inc()
		lg.Info("authorization denied",
			zap.String(logger.FieldPolicy, policy.Name),
			zap.String("requirement", d.Failed),
			zap.Int64(logger.FieldUID, app.GetUID(c)),
			zap.String(logger.FieldPath, c.Request.URL.Path),
			zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)))

		response := app.NewResponse(c)
		if !p.Authenticated {
			response.ToResponse(code.ErrorNotUserAuthToken)
		} else {
			response.ToResponse(code.ErrorForbidden)
		}
		c.Abort()
	}
}
