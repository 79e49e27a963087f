package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-sp/central-cidadao-api/internal/service"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/response"
)

// NotificationHandler exposes the citizen notification inbox.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListByCitizen godoc
// @Summary List a citizen's notifications
// @Tags Notifications
// @Produce json
// @Param id path string true "Citizen ID"
// @Param naoLidas query bool false "Only unread notifications"
// @Success 200 {object} response.Envelope
// @Router /cidadaos/{id}/notificacoes [get]
func (h *NotificationHandler) ListByCitizen(c *gin.Context) {
	citizenID := c.Param("id")
	var err error
	var notifications interface{}
	if c.Query("naoLidas") == "true" {
		notifications, err = h.notifications.ListUnread(c.Request.Context(), citizenID)
	} else {
		notifications, err = h.notifications.ListByCitizen(c.Request.Context(), citizenID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// CountUnread godoc
// @Summary Unread notification count for a citizen
// @Tags Notifications
// @Produce json
// @Param id path string true "Citizen ID"
// @Success 200 {object} response.Envelope
// @Router /cidadaos/{id}/notificacoes/nao-lidas [get]
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	count, err := h.notifications.CountUnread(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"nao_lidas": count}, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notificacoes/{id}/lida [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRead godoc
// @Summary Mark all of a citizen's notifications as read
// @Tags Notifications
// @Param id path string true "Citizen ID"
// @Success 204
// @Router /cidadaos/{id}/notificacoes/lidas [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
