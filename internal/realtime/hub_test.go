package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hackboard/backend/internal/middleware"
	"github.com/hackboard/backend/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(h *Hub, id, room string) *Client {
	return &Client{ID: id, Room: room, hub: h, send: make(chan WSMessage, 4)}
}

type fakeRedis struct {
	mu        sync.Mutex
	published []string
	handlers  map[string]func(string, []byte)
	cancelled []string
	err       error
}

func (f *fakeRedis) PublishRoomEvent(_ context.Context, room, event string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, room+"/"+event)
	if h := f.handlers[room]; h != nil {
		h(event, payload)
	}
	return nil
}

func (f *fakeRedis) SubscribeRoom(room string, handler func(string, []byte)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[string]func(string, []byte))
	}
	f.handlers[room] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, room)
		f.cancelled = append(f.cancelled, room)
	}, nil
}

func TestValidRoom(t *testing.T) {
	for room, want := range map[string]bool{
		"events":      true,
		"event:hack1": true,
		"user:user-1": true,
		"event:":      false,
		"user:":       false,
		"":            false,
		"ideas":       false,
	} {
		assert.Equal(t, want, ValidRoom(room), room)
	}
}

func TestHubBroadcastIsScopedToRoom(t *testing.T) {
	h := NewHub(nil, nil, nil)
	a := newTestClient(h, "a", "event:hack-1")
	b := newTestClient(h, "b", "event:hack-2")
	h.Register(a)
	h.Register(b)

	require.NoError(t, h.Publish(context.Background(), "event:hack-1", "idea_created", map[string]string{"id": "idea-1"}))

	msg := <-a.send
	assert.Equal(t, "idea_created", msg.Event)
	assert.JSONEq(t, `{"id":"idea-1"}`, string(msg.Data))
	assert.Empty(t, b.send)

	h.Unregister(a)
	h.Unregister(b)
	assert.Equal(t, 0, h.RoomSize("event:hack-1"))
	_, open := <-a.send
	assert.False(t, open)
}

func TestHubUnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub(nil, nil, nil)
	c := newTestClient(h, "a", "events")
	h.Register(c)
	h.Unregister(c)
	assert.NotPanics(t, func() { h.Unregister(c) })
}

func TestHubDispatchTargetsUserRoom(t *testing.T) {
	h := NewHub(nil, nil, nil)
	c := newTestClient(h, "a", UserRoom("user-2"))
	h.Register(c)
	defer h.Unregister(c)

	n := models.Notification{ID: "n1", UserID: "user-2", Message: "hello"}
	require.NoError(t, h.Dispatch(context.Background(), n))

	msg := <-c.send
	assert.Equal(t, EventNotification, msg.Event)
	var got models.Notification
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "n1", got.ID)
}

func TestHubPublishesThroughRedis(t *testing.T) {
	r := &fakeRedis{}
	h := NewHub(nil, r, r)
	c := newTestClient(h, "a", "events")
	h.Register(c)

	require.NoError(t, h.Publish(context.Background(), "events", "event_created", map[string]int{"n": 1}))
	assert.Equal(t, []string{"events/event_created"}, r.published)
	// delivered once, by the subscription callback
	assert.Len(t, c.send, 1)

	h.Unregister(c)
	assert.Equal(t, []string{"events"}, r.cancelled)
}

func TestHubFallsBackToLocalWhenRedisFails(t *testing.T) {
	r := &fakeRedis{err: errors.New("down")}
	h := NewHub(nil, r, r)
	c := newTestClient(h, "a", "events")
	h.Register(c)
	defer h.Unregister(c)

	err := h.Publish(context.Background(), "events", "event_created", map[string]int{"n": 1})
	require.Error(t, err)
	assert.Len(t, c.send, 1)
}

func TestServeWsDeliversRoomEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub(nil, nil, nil)
	r := gin.New()
	r.GET("/ws", ServeWs(h, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.RoomSize("events") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, h.Publish(context.Background(), "events", "event_created", map[string]string{"id": "event-1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "event_created", msg.Event)

	require.NoError(t, conn.WriteJSON(WSMessage{Event: "ping"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Event)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.RoomSize("events") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWsRejectsUnknownRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", ServeWs(NewHub(nil, nil, nil), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws?room=lobby", nil))
	assert.Equal(t, 400, w.Code)
}

// actingAs stands in for middleware.Identity with a fixed actor.
func actingAs(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}
}

func TestServeWsUserRoomRequiresMatchingActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name  string
		actor string
		want  int
	}{
		{"anonymous", "", 401},
		{"other user", "user-2", 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHub(nil, nil, nil)
			r := gin.New()
			r.GET("/ws", actingAs(tt.actor), ServeWs(h, nil))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/ws?room=user:user-1", nil))
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, 0, h.RoomSize(UserRoom("user-1")))
		})
	}
}

func TestServeWsOwnUserRoomReceivesNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub(nil, nil, nil)
	r := gin.New()
	r.GET("/ws", actingAs("user-1"), ServeWs(h, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=user:user-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	room := UserRoom("user-1")
	require.Eventually(t, func() bool { return h.RoomSize(room) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, h.Dispatch(context.Background(), models.Notification{ID: "n-1", UserID: "user-1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventNotification, msg.Event)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.RoomSize(room) == 0 }, 2*time.Second, 10*time.Millisecond)
}
