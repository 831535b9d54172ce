// Package dataservice is the query and mutation boundary for events, ideas,
// users and notifications. Every operation seeds the store on first use,
// pauses for the configured latency, and performs its read or atomic
// read-modify-write against one store key.
package dataservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/seed"
	"github.com/hackboard/backend/internal/store"
)

// Publisher receives change events after a mutation commits.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload interface{}) error
}

// Dispatcher delivers a stored notification to its recipient.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// Change feed rooms and event names.
const (
	RoomEvents = "events"

	EventCreated        = "event_created"
	EventJoined         = "event_joined"
	IdeaCreated         = "idea_created"
	IdeaUpdated         = "idea_updated"
	IdeaParticipantsSet = "idea_participants"
	IdeaJoinRequested   = "idea_join_requested"
	TaskChanged         = "task_changed"
	RequirementChanged  = "requirement_changed"
)

// EventRoom returns the change feed room for one event.
func EventRoom(eventID string) string { return "event:" + eventID }

// Options configures a Service. The zero value is usable: no latency,
// unbounded capacity, no publisher or dispatcher.
type Options struct {
	Latency    time.Duration
	Capacity   CapacityPolicy
	Publisher  Publisher
	Dispatcher Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
	NewID      func() string
}

// Service implements the data service operations over a store.
type Service struct {
	store      *store.Store
	latency    time.Duration
	capacity   CapacityPolicy
	publisher  Publisher
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
	refs       refGenerator
	mu         sync.Mutex // guards publisher and dispatcher swaps
}

// New creates a Service over s.
func New(s *store.Store, opts Options) *Service {
	svc := &Service{
		store:      s,
		latency:    opts.Latency,
		capacity:   opts.Capacity,
		publisher:  opts.Publisher,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if svc.capacity == nil {
		svc.capacity = UnboundedCapacity
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc
}

// SetPublisher replaces the change feed publisher.
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// SetDispatcher replaces the notification dispatcher.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatcher = d
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store { return s.store }

// begin runs the steps every operation shares: seed absent keys, then wait
// out the simulated latency.
func (s *Service) begin(ctx context.Context) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) ensure(ctx context.Context) error {
	if err := seed.Ensure(ctx, s.store, s.logger); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, room, event string, payload interface{}) {
	s.mu.Lock()
	p := s.publisher
	s.mu.Unlock()
	if p == nil {
		return
	}
	if err := p.Publish(ctx, room, event, payload); err != nil {
		s.logger.Warn("publish change", zap.String("room", room), zap.String("event", event), zap.Error(err))
	}
}

func (s *Service) id(prefix string) string {
	return prefix + "-" + s.newID()
}
