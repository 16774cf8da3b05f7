package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

// AccountHandler 封装了个人页相关的 HTTP 处理逻辑
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler 创建 AccountHandler 实例
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Summary 返回当前用户的活动统计
func (h *AccountHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.accountService.Summary(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":       summary.User.ID,
			"username": summary.User.Username,
			"email":    summary.User.Email,
		},
		"rooms_owned":        summary.RoomsOwned,
		"rooms_joined":       summary.RoomsJoined,
		"announcements_made": summary.AnnouncementsMade,
		"reactions_given":    summary.ReactionsGiven,
	})
}
