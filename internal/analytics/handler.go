package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/pkg/response"
)

// Handler handles the dashboard analytics endpoints.
type Handler struct {
	svc *dataservice.Service
}

// NewHandler creates an analytics handler.
func NewHandler(svc *dataservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Summary handles GET /analytics/summary. Admin access is enforced by route middleware.
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.svc.Analytics(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, summary)
}

// Skills handles GET /analytics/skills?q=.
func (h *Handler) Skills(c *gin.Context) {
	stats, err := h.svc.SkillMatrix(c.Request.Context(), c.Query("q"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, stats)
}
