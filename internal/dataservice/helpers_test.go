package dataservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

type published struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, room, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Room: room, Event: event, Payload: payload})
	return nil
}

func (p *recordingPublisher) rooms(event string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e.Room)
		}
	}
	return out
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return d.err
}

func (d *recordingDispatcher) all() []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Notification(nil), d.sent...)
}

type fixture struct {
	svc   *Service
	store *store.Store
	mem   *store.Memory
	pub   *recordingPublisher
	disp  *recordingDispatcher
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	mem := store.NewMemory()
	st := store.New(mem, nil)
	f := &fixture{store: st, mem: mem, pub: &recordingPublisher{}, disp: &recordingDispatcher{}}
	o := Options{Publisher: f.pub, Dispatcher: f.disp, NewID: sequentialIDs()}
	for _, fn := range opts {
		fn(&o)
	}
	f.svc = New(st, o)
	return f
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%04d", n)
	}
}

func fixedClock(t time.Time) func(*Options) {
	return func(o *Options) { o.Now = func() time.Time { return t } }
}

func (f *fixture) raw(t *testing.T, key store.Key) string {
	t.Helper()
	b, _, err := f.mem.Get(context.Background(), string(key))
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) idea(t *testing.T, id string) models.Idea {
	t.Helper()
	idea, err := f.svc.GetIdea(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, idea, id)
	return *idea
}

func userIDs(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

var errDispatch = errors.New("dispatch down")

func nowFixed() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
