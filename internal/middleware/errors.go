package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/pkg/response"
)

// statusClientClosedRequest is the non-standard status nginx uses when the
// client goes away before the response is ready.
const statusClientClosedRequest = 499

// RespondError writes the envelope for a data service error. Unexpected
// errors are attached to the context so Logger reports them.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dataservice.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, dataservice.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, dataservice.ErrInvalidStage),
		errors.Is(err, dataservice.ErrInvalidTaskStatus),
		errors.Is(err, dataservice.ErrInvalidEvent):
		response.BadRequest(c, err.Error())
	case errors.Is(err, context.Canceled):
		_ = c.Error(err)
		c.AbortWithStatus(statusClientClosedRequest)
	default:
		_ = c.Error(err)
		response.Internal(c, "internal error")
	}
}
