package models

import "time"

// StageNames is the fixed lifecycle taxonomy an idea moves through.
var StageNames = []string{"Ideation", "Planning", "Development", "Testing", "Presentation"}

const (
	// MinStage and MaxStage bound Idea.CurrentStage.
	MinStage = 1
	MaxStage = 5
)

// ValidStage reports whether stage lies within the lifecycle taxonomy.
func ValidStage(stage int) bool {
	return stage >= MinStage && stage <= MaxStage
}

// StageName returns the display name for a 1-based stage, or "Unknown".
func StageName(stage int) string {
	if !ValidStage(stage) {
		return "Unknown"
	}
	return StageNames[stage-1]
}

// Idea is a project proposal within an event.
type Idea struct {
	ID              string        `json:"id"`
	ReferenceNumber string        `json:"referenceNumber"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	TechStack       []string      `json:"techStack"`
	Owner           User          `json:"owner"`
	EventID         string        `json:"eventId"`
	CurrentStage    int           `json:"currentStage"`
	IsLongRunning   bool          `json:"isLongRunning"`
	Participants    []User        `json:"participants"`
	Requirements    []Requirement `json:"requirements"`
	Tasks           []Task        `json:"tasks"`
	JoinRequests    []User        `json:"joinRequests"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// IsOwner reports whether userID owns the idea.
func (i Idea) IsOwner(userID string) bool { return i.Owner.ID == userID }

// HasParticipant reports whether userID is in the participant list.
func (i Idea) HasParticipant(userID string) bool { return ContainsUser(i.Participants, userID) }

// HasJoinRequest reports whether userID has a pending join request.
func (i Idea) HasJoinRequest(userID string) bool { return ContainsUser(i.JoinRequests, userID) }

// Normalize replaces nil lists with empty ones so stored records always
// carry arrays.
func (i *Idea) Normalize() {
	if i.TechStack == nil {
		i.TechStack = []string{}
	}
	if i.Participants == nil {
		i.Participants = []User{}
	}
	if i.Requirements == nil {
		i.Requirements = []Requirement{}
	}
	for r := range i.Requirements {
		if i.Requirements[r].Responses == nil {
			i.Requirements[r].Responses = []RequirementResponse{}
		}
	}
	if i.Tasks == nil {
		i.Tasks = []Task{}
	}
	if i.JoinRequests == nil {
		i.JoinRequests = []User{}
	}
}

// CleanMembership drops duplicate participants and requesters, removes the
// owner from both lists and discards requests from users who already
// participate.
func (i *Idea) CleanMembership() {
	i.Participants = RemoveUser(UniqueUsers(i.Participants), i.Owner.ID)
	requests := RemoveUser(UniqueUsers(i.JoinRequests), i.Owner.ID)
	i.JoinRequests = make([]User, 0, len(requests))
	for _, u := range requests {
		if !ContainsUser(i.Participants, u.ID) {
			i.JoinRequests = append(i.JoinRequests, u)
		}
	}
}

// FindIdea returns the index of the idea with the given ID, or -1.
func FindIdea(ideas []Idea, id string) int {
	for i := range ideas {
		if ideas[i].ID == id {
			return i
		}
	}
	return -1
}
