package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies one lifecycle event kind.
type EventType string

const (
	// EventType_LISTING_PUBLISHED is emitted when a listing goes AVAILABLE.
	EventType_LISTING_PUBLISHED EventType = "LISTING.PUBLISHED"
	// EventType_LISTING_UNLISTED is emitted when a listing is withdrawn.
	EventType_LISTING_UNLISTED EventType = "LISTING.UNLISTED"
	// EventType_LISTING_RESERVED is emitted when a listing is put on hold.
	EventType_LISTING_RESERVED EventType = "LISTING.RESERVED"
	// EventType_LISTING_RELEASED is emitted when a reservation is lifted.
	EventType_LISTING_RELEASED EventType = "LISTING.RELEASED"
	// EventType_LISTING_CLOSED is emitted when a listing reaches its terminal state.
	EventType_LISTING_CLOSED EventType = "LISTING.CLOSED"
)

// eventTypeByTransition maps each lifecycle operation to its event.
var eventTypeByTransition = map[TransitionKind]EventType{
	TransitionKind_Publish: EventType_LISTING_PUBLISHED,
	TransitionKind_Unlist:  EventType_LISTING_UNLISTED,
	TransitionKind_Reserve: EventType_LISTING_RESERVED,
	TransitionKind_Release: EventType_LISTING_RELEASED,
	TransitionKind_Close:   EventType_LISTING_CLOSED,
}

// EventTypeForTransition resolves the event emitted by a transition kind.
func EventTypeForTransition(kind TransitionKind) EventType {
	return eventTypeByTransition[kind]
}

// ListingEvent represents one lifecycle domain event.
type ListingEvent struct {
	Type      EventType
	ListingID uuid.UUID
	AgentID   uuid.UUID
	CreatedAt time.Time
}

// OutboxStatus represents the processing lifecycle status of an outbox event.
type OutboxStatus string

const (
	// OutboxStatus_Pending indicates the event is ready to be relayed.
	OutboxStatus_Pending OutboxStatus = "PENDING"
	// OutboxStatus_Failed indicates the event exceeded retries and stopped processing.
	OutboxStatus_Failed OutboxStatus = "FAILED"
)

// OutboxEvent represents an event stored in the transactional outbox.
type OutboxEvent struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Topic      string
	EventType  string
	Payload    []byte
	RetryCount int
	MaxRetries int
	LastError  *string
	CreatedAt  time.Time
}

// OutboxRepository defines the interface for managing outbox events.
type OutboxRepository interface {
	// RecordEvent stores a lifecycle event in the outbox, in the same
	// transaction as the status write that produced it.
	RecordEvent(ctx context.Context, event ListingEvent) error
	// FetchPendingEvents retrieves a batch of pending outbox events.
	FetchPendingEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	// UpdateEvent updates the status, retry count, and last error of an outbox event.
	UpdateEvent(ctx context.Context, eventID uuid.UUID, status OutboxStatus, retryCount int, lastError string) error
	// DeleteEvent deletes a relayed event from the outbox.
	DeleteEvent(ctx context.Context, eventID uuid.UUID) error
}

// EventPublisher defines the interface for publishing relayed events to a broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event OutboxEvent) error
}
