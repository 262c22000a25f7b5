package middleware

import (
	"strings"

	"github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest 依次从 Authorization 头、token 头和 token 查询参数读取
func tokenFromRequest(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
			return strings.TrimSpace(s[7:])
		}
		return strings.TrimSpace(s)
	}
	if s := c.GetHeader("Token"); s != "" {
		return s
	}
	return c.Query("token")
}

// UserAuthToken 用户 Token 认证中间件（使用注入的 TokenManager）
func UserAuthToken(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := tokenFromRequest(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := tm.Parse(token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Set(app.UserTokenKey, user)

		c.Next()
	}
}
