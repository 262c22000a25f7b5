package routers

import (
	"embed"
	"net/http"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/authz"
	"github.com/haierkeys/agent-scrum-service/internal/middleware"
	"github.com/haierkeys/agent-scrum-service/internal/routers/api_router"
	"github.com/haierkeys/agent-scrum-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LoginRoute 登录路由，单独限流
const LoginRoute = "/api/user/login"

func newMethodLimiters(perSecond int64) limiter.Face {
	if perSecond <= 0 {
		perSecond = 10
	}
	return limiter.NewMethodLimiter().AddBuckets(
		limiter.BucketRule{
			Key:          LoginRoute,
			FillInterval: time.Second,
			Capacity:     perSecond,
			Quantum:      perSecond,
		},
	)
}

func NewRouter(frontendFiles embed.FS, appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()
	lg := appContainer.Logger()
	adminEmail := cfg.Security.AdminEmail

	frontendIndexContent, _ := frontendFiles.ReadFile("frontend/index.html")

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", frontendIndexContent)
	})

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(middleware.TraceConfig{Enabled: cfg.Tracer.Enabled, Header: cfg.Tracer.Header}))
		api.Use(middleware.Metrics())
		api.Use(middleware.RateLimiter(newMethodLimiters(cfg.App.LoginRateLimit)))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(lg))
		api.Use(middleware.RecoveryWithLogger(lg))

		// 创建 Handlers（注入 App Container）
		versionHandler := api_router.NewVersionHandler(appContainer)
		userHandler := api_router.NewUserHandler(appContainer)
		promptHandler := api_router.NewPromptHandler(appContainer)
		chatHandler := api_router.NewChatHandler(appContainer)
		settingHandler := api_router.NewSettingHandler(appContainer)
		documentHandler := api_router.NewDocumentHandler(appContainer)
		adminHandler := api_router.NewAdminHandler(appContainer)

		api.GET("/version", versionHandler.ServerVersion)
		api.POST("/user/login", userHandler.Login)

		auth := api.Group("", middleware.UserAuthToken(appContainer.TokenManager))
		{
			auth.GET("/user/info", userHandler.UserInfo)

			auth.GET("/chat", chatHandler.History)
			auth.POST("/chat", chatHandler.Send)
			auth.DELETE("/chat", chatHandler.Clear)

			auth.GET("/setting/credentials", settingHandler.CredentialStatus)
			auth.POST("/setting/credentials", settingHandler.CredentialUpload)

			auth.POST("/document", documentHandler.Create)

			prompt := auth.Group("", middleware.Authorize(authz.RequireAdminRole, adminEmail, lg))
			{
				prompt.GET("/prompts", promptHandler.List)
				prompt.GET("/prompt", promptHandler.Get)
				prompt.GET("/prompt/version", promptHandler.CurrentVersion)
				prompt.GET("/prompt/versions", promptHandler.Versions)
				prompt.GET("/prompt/diff", promptHandler.Diff)
				prompt.POST("/prompt", promptHandler.Create)
				prompt.PUT("/prompt", promptHandler.Edit)
				prompt.DELETE("/prompt", promptHandler.Delete)
				prompt.POST("/prompt/export", documentHandler.ExportPrompt)
			}

			admin := auth.Group("/admin")
			{
				admin.GET("", middleware.Authorize(authz.RequireAdminRole, adminEmail, lg), adminHandler.Home)
				admin.GET("/users", middleware.Authorize(authz.CanManageUsers, adminEmail, lg), adminHandler.Users)
				admin.POST("/users", middleware.Authorize(authz.CanManageUsers, adminEmail, lg), adminHandler.CreateUser)
				admin.GET("/reports", middleware.Authorize(authz.CanViewReports, adminEmail, lg), adminHandler.Reports)
				admin.GET("/system", middleware.Authorize(authz.SuperAdminOnly, adminEmail, lg), adminHandler.System)
				admin.GET("/advanced-users", middleware.Authorize(authz.And(authz.RequireAdminRole, authz.CanManageUsers), adminEmail, lg), adminHandler.Users)
			}
		}
	}
	r.NoRoute(middleware.NoFound())

	return r
}
