package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/pkg/response"
)

const (
	// HeaderUserID carries the acting user's id.
	HeaderUserID = "X-User-ID"
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUser is the key for the resolved *models.User in gin context.
	ContextUser = "user"
	// QueryUserID names the actor on WebSocket upgrades, where browsers
	// cannot set headers.
	QueryUserID = "userId"
)

// Users resolves and authorizes actors against the store.
type Users interface {
	ResolveUser(ctx context.Context, userID string) (*models.User, error)
	AuthorizeAdmin(ctx context.Context, userID string) error
}

// Identity resolves the X-User-ID header against the stored users. Requests
// without the header continue anonymously; an unknown id is rejected.
// The role always comes from the store, never from the client.
func Identity(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderUserID)
		if id == "" && websocket.IsWebSocketUpgrade(c.Request) {
			id = c.Query(QueryUserID)
		}
		if id == "" {
			c.Next()
			return
		}
		user, err := users.ResolveUser(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			response.Internal(c, "failed to resolve user")
			c.Abort()
			return
		}
		if user == nil {
			response.Unauthorized(c, "unknown user")
			c.Abort()
			return
		}
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			response.Unauthorized(c, "missing "+HeaderUserID+" header")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only users whose stored role is admin.
func RequireAdmin(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UserID(c)
		if id == "" {
			response.Unauthorized(c, "missing "+HeaderUserID+" header")
			c.Abort()
			return
		}
		err := users.AuthorizeAdmin(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, dataservice.ErrForbidden):
			response.Forbidden(c, "admin role required")
			c.Abort()
		case errors.Is(err, dataservice.ErrNotFound):
			response.Unauthorized(c, "unknown user")
			c.Abort()
		default:
			_ = c.Error(err)
			response.Internal(c, "failed to authorize")
			c.Abort()
		}
	}
}

// UserID returns the resolved actor id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// User returns the resolved actor, or nil.
func User(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
