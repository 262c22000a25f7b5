package middleware

import (
	"github.com/gin-gonic/gin"
)

// AppInfo 写入应用名和版本，响应头带上版本号
func AppInfo(name, version string) gin.HandlerFunc {

	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Header("X-App-Version", version)

		c.Next()
	}
}
