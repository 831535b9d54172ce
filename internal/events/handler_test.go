package events

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/apitest"
	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

func setup(t *testing.T, svc *dataservice.Service) *gin.Engine {
	t.Helper()
	h := NewHandler(svc)
	r := apitest.NewRouter(svc)
	r.GET("/events", h.List)
	r.POST("/events", middleware.RequireAdmin(svc), h.Create)
	r.GET("/events/:id", h.GetByID)
	r.GET("/events/:id/ideas", h.ListIdeas)
	r.POST("/events/:id/join", middleware.RequireUser(), h.Join)
	return r
}

func TestListAndGet(t *testing.T) {
	r := setup(t, apitest.NewService(t))

	var events []models.Event
	env := apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/events", "", nil), &events)
	assert.True(t, env.Success)
	require.Len(t, events, 3)
	assert.Len(t, events[0].Ideas, 2)

	var e models.Event
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/events/hack-2", "", nil), &e)
	assert.Equal(t, "hack-2", e.ID)

	w := apitest.Do(t, r, http.MethodGet, "/events/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", apitest.Decode(t, w, nil).Code)

	var ideas []models.Idea
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/events/hack-3/ideas", "", nil), &ideas)
	assert.Empty(t, ideas)
	assert.NotNil(t, ideas)
}

func TestCreateRequiresAdmin(t *testing.T) {
	r := setup(t, apitest.NewService(t))
	body := dataservice.NewEvent{
		Name:   "Winter Hack",
		Stages: []dataservice.NewStage{{Name: "Ideation"}, {Name: "Build"}, {Name: "Demo"}},
	}

	assert.Equal(t, http.StatusUnauthorized, apitest.Do(t, r, http.MethodPost, "/events", "", body).Code)
	assert.Equal(t, http.StatusForbidden, apitest.Do(t, r, http.MethodPost, "/events", "user-1", body).Code)

	w := apitest.Do(t, r, http.MethodPost, "/events", "admin-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var e models.Event
	apitest.Decode(t, w, &e)
	assert.Equal(t, "Winter Hack", e.Name)
	assert.Equal(t, 0, e.CurrentParticipants)
	require.Len(t, e.Stages, 3)
	assert.Equal(t, 3, e.Stages[2].Order)

	body.Stages = body.Stages[:2]
	w = apitest.Do(t, r, http.MethodPost, "/events", "admin-1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJoin(t *testing.T) {
	r := setup(t, apitest.NewService(t))

	assert.Equal(t, http.StatusUnauthorized, apitest.Do(t, r, http.MethodPost, "/events/hack-1/join", "", nil).Code)
	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodPost, "/events/hack-1/join", "user-4", nil).Code)
	assert.Equal(t, http.StatusNotFound, apitest.Do(t, r, http.MethodPost, "/events/nope/join", "user-4", nil).Code)

	var e models.Event
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/events/hack-1", "", nil), &e)
	assert.Equal(t, 43, e.CurrentParticipants)
}

func TestJoinFullEvent(t *testing.T) {
	st := store.New(store.NewMemory(), nil)
	svc := dataservice.New(st, dataservice.Options{Capacity: dataservice.EnforceMaxParticipants})
	r := setup(t, svc)

	// hack-3 is at 58 of 60
	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodPost, "/events/hack-3/join", "user-1", nil).Code)
	assert.Equal(t, http.StatusOK, apitest.Do(t, r, http.MethodPost, "/events/hack-3/join", "user-2", nil).Code)
	w := apitest.Do(t, r, http.MethodPost, "/events/hack-3/join", "user-3", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "event-full", apitest.Decode(t, w, nil).Code)
}
