package domain

import "github.com/google/uuid"

// Actor identifies who is performing a listing operation.
type Actor struct {
	ID uuid.UUID
	// Admin grants the administrative override: admins may operate on any listing.
	Admin bool
}

// CanModify reports whether the actor owns the listing or holds the
// administrative override.
func (a Actor) CanModify(listing Listing) bool {
	return a.Admin || a.ID == listing.AgentID
}
