package users

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/apitest"
	"github.com/hackboard/backend/internal/models"
)

func TestHandler(t *testing.T) {
	svc := apitest.NewService(t)
	h := NewHandler(svc)
	r := apitest.NewRouter(svc)
	r.GET("/users", h.List)
	r.GET("/users/:id", h.GetByID)
	r.GET("/users/:id/ideas", h.Ideas)

	var users []models.User
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/users", "", nil), &users)
	assert.Len(t, users, 5)

	var u models.User
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/users/admin-1", "", nil), &u)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, http.StatusNotFound, apitest.Do(t, r, http.MethodGet, "/users/ghost", "", nil).Code)

	var ideas []models.Idea
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/users/user-2/ideas", "", nil), &ideas)
	require.Len(t, ideas, 1)
	assert.Equal(t, "idea-2", ideas[0].ID)

	ideas = nil
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/users/user-4/ideas", "", nil), &ideas)
	assert.NotNil(t, ideas)
	assert.Empty(t, ideas)
}
