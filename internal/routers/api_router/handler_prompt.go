package api_router

import (
	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	apperrors "github.com/haierkeys/agent-scrum-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PromptHandler prompt store API router handler
// PromptHandler 提示词 API 路由处理器，路由组已要求 RequireAdminRole
type PromptHandler struct {
	*Handler
}

// NewPromptHandler creates PromptHandler instance
// NewPromptHandler 创建 PromptHandler 实例
func NewPromptHandler(a *app.App) *PromptHandler {
	return &PromptHandler{
		Handler: NewHandler(a),
	}
}

// List current versions, newest first
// List 当前版本列表，按创建时间倒序
// GET /api/prompts
func (h *PromptHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	list, err := h.App.PromptService.ListCurrent(ctx)
	if err != nil {
		h.logError(ctx, "PromptHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(list))
}

// Get prompt detail with its lineage
// Get 提示词详情及其版本链
// GET /api/prompt?id=
func (h *PromptHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}
	if !h.bind(c, "PromptHandler.Get", params) {
		return
	}
	ctx := c.Request.Context()

	detail, err := h.App.PromptService.Get(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "PromptHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(detail))
}

// CurrentVersion 任意版本 ID 所在版本链的当前版本
// GET /api/prompt/version?id=
func (h *PromptHandler) CurrentVersion(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}
	if !h.bind(c, "PromptHandler.CurrentVersion", params) {
		return
	}
	ctx := c.Request.Context()

	prompt, err := h.App.PromptService.GetCurrent(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "PromptHandler.CurrentVersion", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(prompt))
}

// Versions 版本链，按版本号倒序
// GET /api/prompt/versions?id=
func (h *PromptHandler) Versions(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.IDRequest{}
	if !h.bind(c, "PromptHandler.Versions", params) {
		return
	}
	ctx := c.Request.Context()

	versions, err := h.App.PromptService.GetLineage(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "PromptHandler.Versions", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(versions))
}

// Diff 同一版本链内两个版本的内容差异
// GET /api/prompt/diff?from=&to=
func (h *PromptHandler) Diff(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PromptDiffRequest{}
	if !h.bind(c, "PromptHandler.Diff", params) {
		return
	}
	ctx := c.Request.Context()

	diff, err := h.App.PromptService.Diff(ctx, params.From, params.To)
	if err != nil {
		h.logError(ctx, "PromptHandler.Diff", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(diff))
}

// Create new prompt lineage
// Create 创建提示词（版本 1）
// POST /api/prompt
func (h *PromptHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PromptCreateRequest{}
	if !h.bind(c, "PromptHandler.Create", params) {
		return
	}
	ctx := c.Request.Context()

	prompt, err := h.App.PromptService.Create(ctx, params, operator(c))
	if err != nil {
		h.logError(ctx, "PromptHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(prompt))
}

// Edit saves a new version; the edited record may be any version of the lineage
// Edit 编辑即创建新版本，可基于版本链中的任意版本
// PUT /api/prompt
func (h *PromptHandler) Edit(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PromptEditRequest{}
	if !h.bind(c, "PromptHandler.Edit", params) {
		return
	}
	ctx := c.Request.Context()

	prompt, err := h.App.PromptService.CreateVersion(ctx, params, operator(c))
	if err != nil {
		h.logError(ctx, "PromptHandler.Edit", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(prompt))
}

// Delete 删除一个版本，删除当前版本时提升剩余最高版本
// DELETE /api/prompt
func (h *PromptHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PromptDeleteRequest{}
	if !h.bind(c, "PromptHandler.Delete", params) {
		return
	}
	ctx := c.Request.Context()

	result, err := h.App.PromptService.Delete(ctx, params)
	if err != nil {
		h.logError(ctx, "PromptHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}
