package api_router

import (
	"io"

	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/internal/service"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	apperrors "github.com/haierkeys/agent-scrum-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CredentialFileField multipart 上传时的文件字段名
const CredentialFileField = "file"

// SettingHandler 用户设置 API 路由处理器
type SettingHandler struct {
	*Handler
}

func NewSettingHandler(a *app.App) *SettingHandler {
	return &SettingHandler{Handler: NewHandler(a)}
}

// CredentialStatus 当前用户的凭据状态
// GET /api/setting/credentials
func (h *SettingHandler) CredentialStatus(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	status, err := h.App.CredentialService.Status(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "SettingHandler.CredentialStatus", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(status))
}

// CredentialUpload 上传服务账号凭据，支持 multipart 文件或 JSON 字段
// POST /api/setting/credentials
func (h *SettingHandler) CredentialUpload(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	var raw []byte
	if fh, err := c.FormFile(CredentialFileField); err == nil {
		limit := h.App.Config().Document.CredentialMaxSize
		if limit <= 0 {
			limit = service.DefaultCredentialMaxSize
		}
		f, err := fh.Open()
		if err != nil {
			h.logError(ctx, "SettingHandler.CredentialUpload.Open", err)
			response.ToResponse(code.ErrorCredentialMissing)
			return
		}
		defer f.Close()
		// 多读一个字节，超限由 service 判定
		raw, err = io.ReadAll(io.LimitReader(f, limit+1))
		if err != nil {
			h.logError(ctx, "SettingHandler.CredentialUpload.Read", err)
			response.ToResponse(code.ErrorCredentialMissing)
			return
		}
	} else {
		params := &dto.CredentialUploadRequest{}
		if !h.bind(c, "SettingHandler.CredentialUpload", params) {
			return
		}
		raw = []byte(params.CredentialsJSON)
	}

	status, err := h.App.CredentialService.Upload(ctx, pkgapp.GetUID(c), raw)
	if err != nil {
		h.logError(ctx, "SettingHandler.CredentialUpload", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(status))
}
