package notifications

import (
	"github.com/gin-gonic/gin"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/pkg/response"
)

// Handler handles the acting user's notification endpoints.
type Handler struct {
	svc *dataservice.Service
}

// NewHandler creates a notification handler.
func NewHandler(svc *dataservice.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /notifications, newest first.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListNotifications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, list)
}

// MarkRead handles POST /notifications/:id/read. Users can only mark their
// own notifications.
func (h *Handler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	list, err := h.svc.ListNotifications(ctx, middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	owned := false
	for _, n := range list {
		if n.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		response.NotFound(c, "notification not found")
		return
	}
	ok, err := h.svc.MarkNotificationRead(ctx, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "notification not found")
		return
	}
	response.OK(c, gin.H{"read": true})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllNotificationsRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, gin.H{"updated": n})
}
