package users

import (
	"github.com/gin-gonic/gin"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/pkg/response"
)

// Handler handles user HTTP endpoints. Users are read-only.
type Handler struct {
	svc *dataservice.Service
}

// NewHandler creates a user handler.
func NewHandler(svc *dataservice.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, users)
}

// GetByID handles GET /users/:id.
func (h *Handler) GetByID(c *gin.Context) {
	u, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u)
}

// Ideas handles GET /users/:id/ideas: ideas the user owns.
func (h *Handler) Ideas(c *gin.Context) {
	ideas, err := h.svc.ListUserIdeas(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, ideas)
}
