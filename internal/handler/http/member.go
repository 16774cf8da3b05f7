package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

// MemberHandler 封装了成员角色管理相关的 HTTP 处理逻辑
type MemberHandler struct {
	roomService *service.RoomService
}

// NewMemberHandler 创建 MemberHandler 实例
func NewMemberHandler(roomService *service.RoomService) *MemberHandler {
	return &MemberHandler{roomService: roomService}
}

// KickMember 处理把成员移出房间的请求
func (h *MemberHandler) KickMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.roomService.KickMember(c.Request.Context(), roomID, actorID, targetID); err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"room_id":  roomID,
		"actor_id": actorID,
		"user_id":  targetID,
	}).Info("Handler.KickMember: Member removed from room")
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Member removed from room"})
}

// PromoteMember 处理把成员提升为管理员的请求
func (h *MemberHandler) PromoteMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	m, err := h.roomService.PromoteMember(c.Request.Context(), roomID, actorID, targetID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Member promoted to admin",
		"member":  memberView(m),
	})
}

// DemoteMember 处理把管理员降级为普通成员的请求
func (h *MemberHandler) DemoteMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	m, err := h.roomService.DemoteMember(c.Request.Context(), roomID, actorID, targetID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Admin demoted to member",
		"member":  memberView(m),
	})
}
