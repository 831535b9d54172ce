package models

import "time"

// ResponseStatus is the review state of a requirement response.
type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseApproved ResponseStatus = "approved"
	ResponseRejected ResponseStatus = "rejected"
)

// Requirement is a skill an idea is looking for.
type Requirement struct {
	ID          string                `json:"id"`
	Skill       string                `json:"skill"`
	Description string                `json:"description"`
	IsOpen      bool                  `json:"isOpen"`
	Responses   []RequirementResponse `json:"responses"`
}

// RequirementResponse is a user's offer to fill a requirement.
type RequirementResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Message   string         `json:"message"`
	Status    ResponseStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}
