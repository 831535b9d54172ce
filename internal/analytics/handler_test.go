package analytics

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/apitest"
	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
)

func TestHandler(t *testing.T) {
	svc := apitest.NewService(t)
	h := NewHandler(svc)
	r := apitest.NewRouter(svc)
	r.GET("/analytics/summary", middleware.RequireAdmin(svc), h.Summary)
	r.GET("/analytics/skills", h.Skills)

	assert.Equal(t, http.StatusForbidden, apitest.Do(t, r, http.MethodGet, "/analytics/summary", "user-1", nil).Code)

	var summary dataservice.Summary
	w := apitest.Do(t, r, http.MethodGet, "/analytics/summary", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	apitest.Decode(t, w, &summary)
	assert.Equal(t, 3, summary.TotalEvents)
	assert.Equal(t, 3, summary.TotalIdeas)
	assert.Equal(t, 5, summary.TotalUsers)
	assert.Equal(t, 115, summary.TotalParticipants)
	assert.Len(t, summary.IdeasByStage, 5)
	assert.Len(t, summary.TopTechStack, 6)

	var stats []dataservice.SkillStat
	apitest.Decode(t, apitest.Do(t, r, http.MethodGet, "/analytics/skills?q="+url.QueryEscape("react"), "", nil), &stats)
	require.Len(t, stats, 2)
	assert.Equal(t, "React", stats[0].Skill)
}
