package api_router

import (
	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	apperrors "github.com/haierkeys/agent-scrum-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler 对话 API 路由处理器，历史按用户隔离
type ChatHandler struct {
	*Handler
}

func NewChatHandler(a *app.App) *ChatHandler {
	return &ChatHandler{Handler: NewHandler(a)}
}

// History 对话历史，空历史以问候语开头
// GET /api/chat
func (h *ChatHandler) History(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	history, err := h.App.ChatService.History(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "ChatHandler.History", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(history))
}

// Send 发送消息并返回回复，上游失败时历史不变
// POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ChatSendRequest{}
	if !h.bind(c, "ChatHandler.Send", params) {
		return
	}
	ctx := c.Request.Context()

	reply, err := h.App.ChatService.Send(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "ChatHandler.Send", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(reply))
}

// Clear 清空对话历史
// DELETE /api/chat
func (h *ChatHandler) Clear(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	if err := h.App.ChatService.Clear(ctx, pkgapp.GetUID(c)); err != nil {
		h.logError(ctx, "ChatHandler.Clear", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}
