package api_router

import (
	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/authz"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/internal/middleware"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	apperrors "github.com/haierkeys/agent-scrum-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理区 API 路由处理器，各路由的策略在路由注册处声明
type AdminHandler struct {
	*Handler
}

func NewAdminHandler(a *app.App) *AdminHandler {
	return &AdminHandler{Handler: NewHandler(a)}
}

// Home 管理首页，列出调用者满足的命名策略
// GET /api/admin
func (h *AdminHandler) Home(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	p := middleware.GetPrincipal(c)
	adminEmail := h.App.Config().Security.AdminEmail

	policies := make([]string, 0)
	for _, policy := range authz.Named() {
		if authz.Allowed(p, policy, adminEmail) {
			policies = append(policies, policy.Name)
		}
	}

	response.ToResponse(code.Success.WithData(dto.AdminHomeDTO{
		UID:      pkgapp.GetUID(c),
		Email:    p.Email,
		Policies: policies,
	}))
}

// Users 用户分页列表
// GET /api/admin/users, GET /api/admin/advanced-users
func (h *AdminHandler) Users(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()
	cfg := h.App.Config().App

	pager := pkgapp.NewPager(c, pkgapp.PaginationConfig{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	users, total, err := h.App.UserService.List(ctx, pager.Page, pager.PageSize)
	if err != nil {
		h.logError(ctx, "AdminHandler.Users", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, users, pager, int(total))
}

// CreateUser 管理端创建用户
// POST /api/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserCreateRequest{}
	if !h.bind(c, "AdminHandler.CreateUser", params) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.App.UserService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "AdminHandler.CreateUser", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(user))
}

// Reports 提示词版本链统计
// GET /api/admin/reports
func (h *AdminHandler) Reports(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	report, err := h.App.ReportService.Prompts(ctx)
	if err != nil {
		h.logError(ctx, "AdminHandler.Reports", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(report))
}

// System 运行时信息
// GET /api/admin/system
func (h *AdminHandler) System(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	info, err := h.App.ReportService.System(ctx)
	if err != nil {
		h.logError(ctx, "AdminHandler.System", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(info))
}
