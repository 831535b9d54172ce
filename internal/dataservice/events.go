package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

const (
	minEventStages = 3
	maxEventStages = 5
)

// eventRecord is the persisted shape of an event. Ideas shadows the model
// field so that whatever an older writer stored there is read and dropped.
type eventRecord struct {
	models.Event
	Ideas json.RawMessage `json:"ideas,omitempty"`
}

// NewStage is a stage supplied at event creation; id and order are assigned.
type NewStage struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Deadline    string `json:"deadline,omitempty"`
}

// NewEvent holds the caller-supplied fields of an event.
type NewEvent struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Category        string             `json:"category,omitempty"`
	StartDate       string             `json:"startDate"`
	EndDate         string             `json:"endDate"`
	Status          models.EventStatus `json:"status,omitempty"`
	Stages          []NewStage         `json:"stages"`
	MaxParticipants *int               `json:"maxParticipants,omitempty"`
}

func (n NewEvent) validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if len(n.Stages) < minEventStages || len(n.Stages) > maxEventStages {
		return fmt.Errorf("%w: got %d stages", ErrInvalidEvent, len(n.Stages))
	}
	for i, st := range n.Stages {
		if strings.TrimSpace(st.Name) == "" {
			return fmt.Errorf("%w: stage %d has no name", ErrInvalidEvent, i+1)
		}
	}
	switch n.Status {
	case "", models.EventUpcoming, models.EventActive, models.EventCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, n.Status)
	}
	if n.MaxParticipants != nil && *n.MaxParticipants < 0 {
		return fmt.Errorf("%w: maxParticipants must not be negative", ErrInvalidEvent)
	}
	return nil
}

func stripIdeas(events []eventRecord) []eventRecord {
	for i := range events {
		events[i].Ideas = nil
		events[i].Event.Ideas = nil
	}
	return events
}

func (s *Service) readEvents(ctx context.Context) ([]models.Event, error) {
	records, err := store.Read[eventRecord](ctx, s.store, store.EventsKey)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[string][]models.Idea)
	for _, idea := range ideas {
		byEvent[idea.EventID] = append(byEvent[idea.EventID], idea)
	}
	events := make([]models.Event, 0, len(records))
	for _, r := range records {
		e := r.Event
		e.Ideas = byEvent[e.ID]
		if e.Ideas == nil {
			e.Ideas = []models.Idea{}
		}
		if e.Stages == nil {
			e.Stages = []models.Stage{}
		}
		events = append(events, e)
	}
	return events, nil
}

// ListEvents returns every event with its ideas attached.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.readEvents(ctx)
}

// GetEvent returns the event with id, or nil when there is none.
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	events, err := s.readEvents(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, nil
}

// CreateEvent appends a new event with no participants and no ideas.
func (s *Service) CreateEvent(ctx context.Context, in NewEvent) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	e := models.Event{
		ID:              s.id("event"),
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Category:        in.Category,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Status:          in.Status,
		MaxParticipants: in.MaxParticipants,
		Stages:          make([]models.Stage, 0, len(in.Stages)),
	}
	for i, st := range in.Stages {
		e.Stages = append(e.Stages, models.Stage{
			ID:          fmt.Sprintf("stage-%d", i+1),
			Name:        strings.TrimSpace(st.Name),
			Description: st.Description,
			Order:       i + 1,
			Deadline:    st.Deadline,
		})
	}
	err := store.Update(ctx, s.store, store.EventsKey, func(events []eventRecord) ([]eventRecord, error) {
		return append(stripIdeas(events), eventRecord{Event: e}), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	e.Ideas = []models.Idea{}
	s.publish(ctx, RoomEvents, EventCreated, e)
	return &e, nil
}

// JoinEvent adds one to the event's participant count. It reports false
// when the event does not exist or the capacity policy refuses the join.
func (s *Service) JoinEvent(ctx context.Context, eventID, userID string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	var joined models.Event
	ok := false
	err := store.Update(ctx, s.store, store.EventsKey, func(events []eventRecord) ([]eventRecord, error) {
		ok = false
		for i := range events {
			if events[i].ID != eventID {
				continue
			}
			if !s.capacity(events[i].Event) {
				return nil, store.ErrSkipWrite
			}
			events[i].CurrentParticipants++
			joined = events[i].Event
			ok = true
			return stripIdeas(events), nil
		}
		return nil, store.ErrSkipWrite
	})
	if err != nil {
		return false, fmt.Errorf("join event: %w", err)
	}
	if ok {
		s.publish(ctx, EventRoom(eventID), EventJoined, map[string]interface{}{
			"eventId":             eventID,
			"userId":              userID,
			"currentParticipants": joined.CurrentParticipants,
		})
	}
	return ok, nil
}
