package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/internal/service"
	"github.com/lokalo/lokalo-backend/pkg/ginutil"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetList handles GET /api/v1/notifications
// @Summary List the authenticated user's notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.NotificationResponse}
// @Router /notifications [get]
func (h *NotificationHandler) GetList(c *gin.Context) {
	page, limit := ginutil.Page(c, 20, 100)

	notifications, meta, err := h.service.GetList(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	common.SuccessResponse(c, notifications, meta)
}

// MarkAsRead handles PUT /api/v1/notifications/:id/read
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "notification id"
// @Success 200 {object} common.APIResponse
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid notification id", err)
		return
	}

	if err := h.service.MarkAsRead(middleware.GetUserID(c), id); err != nil {
		h.respondNotificationError(c, err, "Failed to mark notification as read")
		return
	}

	common.SuccessResponse(c, gin.H{"read": true}, nil)
}

// MarkAllAsRead handles PUT /api/v1/notifications/read-all
// @Summary Mark every notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.service.MarkAllAsRead(middleware.GetUserID(c)); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to mark notifications as read", err)
		return
	}

	common.SuccessResponse(c, gin.H{"read": true}, nil)
}

// Delete handles DELETE /api/v1/notifications/:id
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "notification id"
// @Success 204
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid notification id", err)
		return
	}

	if err := h.service.Delete(middleware.GetUserID(c), id); err != nil {
		h.respondNotificationError(c, err, "Failed to delete notification")
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearAll handles DELETE /api/v1/notifications
// @Summary Delete every notification for the authenticated user
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /notifications [delete]
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	if err := h.service.ClearAll(middleware.GetUserID(c)); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to clear notifications", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) respondNotificationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Notification not found", err)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Not your notification", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
	}
}
