package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

// ReactionHandler 封装了表情回应相关的 HTTP 处理逻辑
type ReactionHandler struct {
	reactionService *service.ReactionService
}

// NewReactionHandler 创建 ReactionHandler 实例
func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// ToggleReactionRequest 定义切换回应请求的结构体
type ToggleReactionRequest struct {
	Type string `json:"type" binding:"required"`
}

// ToggleReaction 处理切换表情回应的请求
func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	announcementID, ok := parseIDParam(c, "announcement_id")
	if !ok {
		return
	}

	var req ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.ToggleReaction: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: type is required")
		return
	}

	result, err := h.reactionService.ToggleReaction(c.Request.Context(), announcementID, userID, domain.ReactionType(req.Type))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"action":   result.Op,
		"reaction": result.Reaction,
		"counts":   result.Counts,
	})
}

// ListReactionTypes 返回可用的表情类型及其符号
func (h *ReactionHandler) ListReactionTypes(c *gin.Context) {
	types := make([]gin.H, len(domain.ReactionTypes))
	for i, t := range domain.ReactionTypes {
		types[i] = gin.H{"type": t, "glyph": t.Glyph()}
	}
	SuccessResponse(c, http.StatusOK, gin.H{"types": types})
}
