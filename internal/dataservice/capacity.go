package dataservice

import "github.com/hackboard/backend/internal/models"

// CapacityPolicy decides whether one more participant may join an event.
type CapacityPolicy func(models.Event) bool

// UnboundedCapacity admits every join; maxParticipants is informational.
func UnboundedCapacity(models.Event) bool { return true }

// EnforceMaxParticipants refuses joins once currentParticipants reaches
// maxParticipants. Events without a maximum are unbounded.
func EnforceMaxParticipants(e models.Event) bool { return e.HasCapacity() }

// CapacityPolicyFor maps the ENFORCE_EVENT_CAPACITY toggle to a policy.
func CapacityPolicyFor(enforce bool) CapacityPolicy {
	if enforce {
		return EnforceMaxParticipants
	}
	return UnboundedCapacity
}
