package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

// AnnouncementHandler 封装了公告相关的 HTTP 处理逻辑
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler 实例
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// AnnouncementRequest 定义发布/编辑公告请求的结构体
type AnnouncementRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

// AnnouncementPayload 是响应中的公告表示
type AnnouncementPayload struct {
	ID        uint   `json:"id"`
	RoomID    uint   `json:"room_id"`
	AuthorID  uint   `json:"author_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func announcementPayload(a *domain.Announcement) AnnouncementPayload {
	return AnnouncementPayload{
		ID:        a.ID,
		RoomID:    a.RoomID,
		AuthorID:  a.AuthorID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// PostAnnouncement 处理发布公告的请求
func (h *AnnouncementHandler) PostAnnouncement(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}

	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.PostAnnouncement: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: title and content are required")
		return
	}

	a, err := h.announcementService.PostAnnouncement(c.Request.Context(), roomID, userID, req.Title, req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"room_id": roomID, "announcement_id": a.ID}).Info("Handler.PostAnnouncement: Announcement posted")
	SuccessResponse(c, http.StatusCreated, gin.H{
		"message":      "Announcement posted successfully",
		"announcement": announcementPayload(a),
	})
}

// ListAnnouncements 返回房间公告列表及回应计数
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}

	views, err := h.announcementService.ListAnnouncements(c.Request.Context(), roomID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	payload := make([]gin.H, len(views))
	for i, v := range views {
		payload[i] = gin.H{
			"announcement": announcementPayload(&v.Announcement),
			"reactions":    v.Reactions,
			"own_reaction": v.OwnReaction,
		}
	}
	SuccessResponse(c, http.StatusOK, gin.H{"announcements": payload})
}

// EditAnnouncement 处理编辑公告的请求
func (h *AnnouncementHandler) EditAnnouncement(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	announcementID, ok := parseIDParam(c, "announcement_id")
	if !ok {
		return
	}

	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.EditAnnouncement: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: title and content are required")
		return
	}

	a, err := h.announcementService.EditAnnouncement(c.Request.Context(), announcementID, userID, req.Title, req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"message":      "Announcement updated successfully",
		"announcement": announcementPayload(a),
	})
}

// DeleteAnnouncement 处理删除公告的请求
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	announcementID, ok := parseIDParam(c, "announcement_id")
	if !ok {
		return
	}

	if err := h.announcementService.DeleteAnnouncement(c.Request.Context(), announcementID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"message": "Announcement deleted successfully"})
}
