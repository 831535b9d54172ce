package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotifyParticipationRequest NotificationType = "participation_request"
	NotifyRequirementResponse  NotificationType = "requirement_response"
	NotifyApproval             NotificationType = "approval"
	NotifyRejection            NotificationType = "rejection"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	UserID    string           `json:"userId"`    // recipient
	RelatedID string           `json:"relatedId"` // idea or requirement the message refers to
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
