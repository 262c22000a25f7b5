package api_router

import (
	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	apperrors "github.com/haierkeys/agent-scrum-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 文档创建 API 路由处理器，使用当前用户上传的凭据
type DocumentHandler struct {
	*Handler
}

func NewDocumentHandler(a *app.App) *DocumentHandler {
	return &DocumentHandler{Handler: NewHandler(a)}
}

// Create 由 Markdown 创建文档
// POST /api/document
func (h *DocumentHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DocumentCreateRequest{}
	if !h.bind(c, "DocumentHandler.Create", params) {
		return
	}
	ctx := c.Request.Context()

	doc, err := h.App.DocumentService.Create(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "DocumentHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(doc))
}

// ExportPrompt 把提示词导出为文档
// POST /api/prompt/export
func (h *DocumentHandler) ExportPrompt(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PromptExportRequest{}
	if !h.bind(c, "DocumentHandler.ExportPrompt", params) {
		return
	}
	ctx := c.Request.Context()

	doc, err := h.App.DocumentService.ExportPrompt(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "DocumentHandler.ExportPrompt", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(doc))
}
