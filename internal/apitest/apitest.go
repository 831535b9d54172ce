// Package apitest holds helpers shared by the HTTP handler tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/internal/store"
)

// Envelope mirrors response.Body with the data left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// NewService returns a data service over a fresh in-memory store with no
// latency. The store seeds itself on first use.
func NewService(t *testing.T) *dataservice.Service {
	t.Helper()
	st := store.New(store.NewMemory(), nil)
	t.Cleanup(func() { _ = st.Close() })
	return dataservice.New(st, dataservice.Options{})
}

// NewRouter returns a test-mode engine with identity resolution installed.
func NewRouter(svc *dataservice.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity(svc))
	return r
}

// Do performs a request as userID ("" for anonymous). body is JSON-encoded
// unless nil.
func Do(t *testing.T, h http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode parses the envelope and, when out is non-nil, its data.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env
}
