package events

import (
	"github.com/gin-gonic/gin"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/pkg/response"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	svc *dataservice.Service
}

// NewHandler creates an event handler.
func NewHandler(svc *dataservice.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	events, err := h.svc.ListEvents(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, events)
}

// Create handles POST /events (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req dataservice.NewEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.svc.CreateEvent(c.Request.Context(), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.Created(c, e)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	e, err := h.svc.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// ListIdeas handles GET /events/:id/ideas.
func (h *Handler) ListIdeas(c *gin.Context) {
	ideas, err := h.svc.ListIdeasByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, ideas)
}

// Join handles POST /events/:id/join for the acting user.
func (h *Handler) Join(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	ok, err := h.svc.JoinEvent(ctx, id, middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if ok {
		response.OK(c, gin.H{"joined": true})
		return
	}
	e, err := h.svc.GetEvent(ctx, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.Conflict(c, "event-full", "event has reached its participant limit")
}
