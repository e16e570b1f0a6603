package handlers

import (
	"net/http"
	"strconv"

	"kkmk/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc *services.ForumService
	log *zap.Logger
}

func NewNotificationHandler(svc *services.ForumService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log}
}

// List 当前用户的通知，新的在前；?limit= 默认 50
func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	notifications, err := h.svc.ListNotifications(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}
