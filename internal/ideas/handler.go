package ideas

import (
	"github.com/gin-gonic/gin"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/pkg/response"
)

// StageRequest is the body for PUT /ideas/:id/stage.
type StageRequest struct {
	Stage int `json:"stage" binding:"required"`
}

// TaskStatusRequest is the body for PATCH /tasks/:id/status.
type TaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// RespondRequest is the body for POST /ideas/:id/requirements/:reqId/responses.
type RespondRequest struct {
	Message string `json:"message" binding:"required"`
}

// Handler handles idea, task and requirement HTTP endpoints.
type Handler struct {
	svc *dataservice.Service
}

// NewHandler creates an idea handler.
func NewHandler(svc *dataservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RequireOwner allows only the owner of the idea named by the :id param.
// Ownership is checked against the stored idea.
func RequireOwner(svc *dataservice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			response.Unauthorized(c, "missing "+middleware.HeaderUserID+" header")
			c.Abort()
			return
		}
		if err := svc.AuthorizeIdeaOwner(c.Request.Context(), c.Param("id"), userID); err != nil {
			middleware.RespondError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// List handles GET /ideas.
func (h *Handler) List(c *gin.Context) {
	ideas, err := h.svc.ListIdeas(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, ideas)
}

// GetByID handles GET /ideas/:id.
func (h *Handler) GetByID(c *gin.Context) {
	idea, err := h.svc.GetIdea(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if idea == nil {
		response.NotFound(c, "idea not found")
		return
	}
	response.OK(c, idea)
}

// Create handles POST /ideas. The acting user becomes the owner.
func (h *Handler) Create(c *gin.Context) {
	var req dataservice.NewIdea
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Title == "" || req.EventID == "" {
		response.BadRequest(c, "title and eventId are required")
		return
	}
	owner := middleware.User(c)
	if owner == nil {
		response.Unauthorized(c, "missing "+middleware.HeaderUserID+" header")
		return
	}
	req.Owner = *owner
	idea, err := h.svc.CreateIdea(c.Request.Context(), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.Created(c, idea)
}

// Update handles PUT /ideas/:id (owner only).
func (h *Handler) Update(c *gin.Context) {
	var req models.Idea
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.ID = c.Param("id")
	idea, err := h.svc.UpdateIdea(c.Request.Context(), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	response.OK(c, idea)
}

// Join handles POST /ideas/:id/join for the acting user.
func (h *Handler) Join(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	ok, err := h.svc.JoinIdea(ctx, id, middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if ok {
		response.OK(c, gin.H{"joined": true})
		return
	}
	idea, err := h.svc.GetIdea(ctx, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if idea == nil {
		response.NotFound(c, "idea not found")
		return
	}
	response.Conflict(c, string(dataservice.JoinAlreadyParticipant), "already part of this idea")
}

// RequestJoin handles POST /ideas/:id/requests for the acting user.
func (h *Handler) RequestJoin(c *gin.Context) {
	result, err := h.svc.RequestJoinIdea(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	switch result {
	case dataservice.JoinRequested:
		response.Created(c, gin.H{"result": result})
	case dataservice.JoinNotFound:
		response.NotFound(c, "idea not found")
	default:
		response.Conflict(c, string(result), "join request not filed")
	}
}

// AcceptRequest handles POST /ideas/:id/requests/:userId/accept (owner only).
func (h *Handler) AcceptRequest(c *gin.Context) {
	ok, err := h.svc.AcceptJoinRequest(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "idea or user not found")
		return
	}
	response.OK(c, gin.H{"accepted": true})
}

// RejectRequest handles POST /ideas/:id/requests/:userId/reject (owner only).
func (h *Handler) RejectRequest(c *gin.Context) {
	ok, err := h.svc.RejectJoinRequest(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "idea not found")
		return
	}
	response.OK(c, gin.H{"rejected": true})
}

// SetStage handles PUT /ideas/:id/stage (owner only).
func (h *Handler) SetStage(c *gin.Context) {
	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ok, err := h.svc.SetIdeaStage(c.Request.Context(), c.Param("id"), req.Stage)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "idea not found")
		return
	}
	response.OK(c, gin.H{"stage": req.Stage})
}

// CreateTask handles POST /ideas/:id/tasks.
func (h *Handler) CreateTask(c *gin.Context) {
	var req dataservice.NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Title == "" {
		response.BadRequest(c, "title is required")
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c, "idea or assignee not found")
		return
	}
	response.Created(c, task)
}

// UpdateTaskStatus handles PATCH /tasks/:id/status.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var req TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ok, err := h.svc.UpdateTaskStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "task not found")
		return
	}
	response.OK(c, gin.H{"status": req.Status})
}

// Respond handles POST /ideas/:id/requirements/:reqId/responses for the acting user.
func (h *Handler) Respond(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.svc.RespondToRequirement(c.Request.Context(), c.Param("id"), c.Param("reqId"), middleware.UserID(c), req.Message)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	switch result {
	case dataservice.ResponseSubmitted:
		response.Created(c, gin.H{"result": result})
	case dataservice.ResponseNotFound:
		response.NotFound(c, "idea or requirement not found")
	default:
		response.Conflict(c, string(result), "response not accepted")
	}
}

// ApproveResponse handles POST .../responses/:respId/approve (owner only).
func (h *Handler) ApproveResponse(c *gin.Context) { h.resolve(c, true) }

// RejectResponse handles POST .../responses/:respId/reject (owner only).
func (h *Handler) RejectResponse(c *gin.Context) { h.resolve(c, false) }

func (h *Handler) resolve(c *gin.Context, approve bool) {
	result, err := h.svc.ResolveRequirementResponse(c.Request.Context(), c.Param("id"), c.Param("reqId"), c.Param("respId"), approve)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	switch result {
	case dataservice.ResolveApproved, dataservice.ResolveRejected:
		response.OK(c, gin.H{"result": result})
	case dataservice.ResolveNotFound:
		response.NotFound(c, "response not found")
	default:
		response.Conflict(c, string(result), "response already resolved")
	}
}
