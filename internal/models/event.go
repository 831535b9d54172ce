package models

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
)

// DateLayout is the ISO calendar date format used for event and stage dates.
const DateLayout = "2006-01-02"

// Stage is one ordered phase of an event.
type Stage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"` // 1-based position within the event
	Deadline    string `json:"deadline,omitempty"`
}

// Event represents a time-boxed activity such as a hackathon.
type Event struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	Category            string      `json:"category,omitempty"`
	StartDate           string      `json:"startDate"`
	EndDate             string      `json:"endDate"`
	Status              EventStatus `json:"status,omitempty"`
	Stages              []Stage     `json:"stages"`
	MaxParticipants     *int        `json:"maxParticipants,omitempty"`
	CurrentParticipants int         `json:"currentParticipants"`
	// Ideas is filled on read from Idea.EventID and never persisted.
	Ideas []Idea `json:"ideas"`
}

// DeriveStatus computes the status from the event dates relative to now.
// Unparseable dates yield the stored status, or upcoming if none.
func (e Event) DeriveStatus(now time.Time) EventStatus {
	start, err1 := parseDate(e.StartDate, now.Location())
	end, err2 := parseDate(e.EndDate, now.Location())
	if err1 != nil || err2 != nil {
		if e.Status != "" {
			return e.Status
		}
		return EventUpcoming
	}
	// endDate is inclusive: the event is active through the whole last day.
	end = end.AddDate(0, 0, 1)
	switch {
	case now.Before(start):
		return EventUpcoming
	case !now.Before(end):
		return EventCompleted
	default:
		return EventActive
	}
}

// EffectiveStatus returns the stored status when present, otherwise the
// status derived from the dates.
func (e Event) EffectiveStatus(now time.Time) EventStatus {
	if e.Status != "" {
		return e.Status
	}
	return e.DeriveStatus(now)
}

// HasCapacity reports whether another participant fits under MaxParticipants.
func (e Event) HasCapacity() bool {
	return e.MaxParticipants == nil || e.CurrentParticipants < *e.MaxParticipants
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
