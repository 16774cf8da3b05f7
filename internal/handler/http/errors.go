package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

// HandleServiceError 把业务错误映射为 HTTP 状态码。
// 未识别的错误一律按 500 处理并记录日志。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrMembershipNotFound),
		errors.Is(err, service.ErrAnnouncementNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrNoRoomAccess),
		errors.Is(err, service.ErrNotAnnouncementAdmin),
		errors.Is(err, service.ErrOnlyOwnerCanPromote),
		errors.Is(err, service.ErrOnlyOwnerCanDemote),
		errors.Is(err, service.ErrOnlyOwnerCanDelete),
		errors.Is(err, service.ErrOnlyOwnerCanKickAdmin),
		errors.Is(err, service.ErrCannotKickMembers),
		errors.Is(err, service.ErrCannotKickOwner),
		errors.Is(err, service.ErrCannotKickSelf),
		errors.Is(err, service.ErrOwnerCannotLeave),
		errors.Is(err, service.ErrCannotEditRoom):
		ErrorResponse(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrRoomNameTaken),
		errors.Is(err, service.ErrAlreadyAdmin),
		errors.Is(err, service.ErrNotAnAdmin),
		errors.Is(err, service.ErrConcurrentConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInvalidRoomCode),
		errors.Is(err, service.ErrInvalidRoomName),
		errors.Is(err, service.ErrInvalidAnnouncement),
		errors.Is(err, service.ErrInvalidReactionType),
		errors.Is(err, service.ErrRegistrationFailed):
		ErrorResponse(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrRoomCodeExhausted):
		ErrorResponse(c, http.StatusServiceUnavailable, err.Error())

	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
