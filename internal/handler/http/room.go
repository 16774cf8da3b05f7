package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

// RoomHandler 封装了房间管理相关的 HTTP 处理逻辑
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// parseIDParam 解析路径中的数字 ID，非法时写入 400 响应
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// RoomView 是响应中的房间表示
type RoomView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedBy uint   `json:"created_by"`
}

func roomView(r *domain.Room) RoomView {
	return RoomView{ID: r.ID, Name: r.Name, Code: r.Code, CreatedBy: r.CreatedBy}
}

func roomViews(rooms []domain.Room) []RoomView {
	views := make([]RoomView, len(rooms))
	for i := range rooms {
		views[i] = roomView(&rooms[i])
	}
	return views
}

// CreateRoomRequest 定义创建房间请求的结构体
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateRoom 处理创建新房间的请求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name is required")
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), userID, req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": room.ID}).Info("Handler.CreateRoom: Room created")
	SuccessResponse(c, http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"room":    roomView(room),
	})
}

// JoinRoomRequest 定义加入房间请求的结构体
type JoinRoomRequest struct {
	Code string `json:"code" binding:"required"`
}

// JoinRoom 处理用户通过房间码加入房间的请求
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.JoinRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: code is required")
		return
	}

	result, err := h.roomService.JoinRoom(c.Request.Context(), userID, req.Code)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	message := "Joined room successfully"
	if result.AlreadyMember {
		message = "You are already a member of this room"
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"message":        message,
		"room":           roomView(result.Room),
		"role":           result.Role,
		"already_member": result.AlreadyMember,
	})
}

// ListRooms 返回当前用户创建与加入的房间
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	overview, err := h.roomService.RoomsForUser(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"owned":  roomViews(overview.Owned),
		"joined": roomViews(overview.Joined),
	})
}

// MemberView 是响应中的成员表示
type MemberView struct {
	UserID     uint        `json:"user_id"`
	Role       domain.Role `json:"role"`
	JoinedAt   string      `json:"joined_at,omitempty"`
	PromotedAt string      `json:"promoted_at,omitempty"`
	PromotedBy *uint       `json:"promoted_by,omitempty"`
}

func memberView(m *domain.Membership) MemberView {
	v := MemberView{UserID: m.UserID, Role: m.Role, PromotedBy: m.PromotedBy}
	if !m.JoinedAt.IsZero() {
		v.JoinedAt = m.JoinedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if m.PromotedAt != nil {
		v.PromotedAt = m.PromotedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}

func memberViews(memberships []domain.Membership) []MemberView {
	views := make([]MemberView, len(memberships))
	for i := range memberships {
		views[i] = memberView(&memberships[i])
	}
	return views
}

// GetRoom 返回房间详情：调用者角色与按角色分组的成员
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}

	detail, err := h.roomService.RoomDetail(c.Request.Context(), roomID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"room":    roomView(detail.Room),
		"role":    detail.Role,
		"owner":   memberView(detail.Owner),
		"admins":  memberViews(detail.Admins),
		"members": memberViews(detail.Members),
	})
}

// UpdateRoomRequest 定义修改房间请求的结构体
type UpdateRoomRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateRoom 处理修改房间名称的请求
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name is required")
		return
	}

	room, err := h.roomService.UpdateRoom(c.Request.Context(), roomID, userID, req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Room updated successfully",
		"room":    roomView(room),
	})
}

// DeleteRoom 处理删除房间的请求
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}

	if err := h.roomService.DeleteRoom(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID}).Info("Handler.DeleteRoom: Room deleted")
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// LeaveRoom 处理成员退出房间的请求
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}

	if err := h.roomService.LeaveRoom(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"message": "You have left the room"})
}
