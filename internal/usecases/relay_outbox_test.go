package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvartira/listinghub/internal/domain"
)

func TestRelayOutboxImpl_Execute(t *testing.T) {
	eventID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	event := domain.OutboxEvent{
		ID:         eventID,
		EntityType: "listing",
		EntityID:   uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"),
		Topic:      "listing-events",
		EventType:  string(domain.EventType_LISTING_PUBLISHED),
		Payload:    []byte(`{"listing_id":"aaaaaaaa-0000-0000-0000-000000000001"}`),
		MaxRetries: 3,
		CreatedAt:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := map[string]struct {
		pending         []domain.OutboxEvent
		publishErr      error
		expectedDeleted []uuid.UUID
		expectedUpdates []domain.OutboxStatus
		expectedRelayed int
	}{
		"relayed-event-is-deleted": {
			pending:         []domain.OutboxEvent{event},
			expectedDeleted: []uuid.UUID{eventID},
			expectedRelayed: 1,
		},
		"publish-failure-stays-pending": {
			pending:         []domain.OutboxEvent{event},
			publishErr:      errors.New("broker unavailable"),
			expectedUpdates: []domain.OutboxStatus{domain.OutboxStatus_Pending},
		},
		"exhausted-retries-mark-failed": {
			pending: func() []domain.OutboxEvent {
				e := event
				e.RetryCount = 2
				return []domain.OutboxEvent{e}
			}(),
			publishErr:      errors.New("broker unavailable"),
			expectedUpdates: []domain.OutboxStatus{domain.OutboxStatus_Failed},
		},
		"empty-outbox": {},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			uow := newFakeUnitOfWork()
			uow.outbox.pending = tt.pending
			publisher := &stubPublisher{err: tt.publishErr}

			relay := NewRelayOutboxImpl(uow, publisher, discardLogger())

			require.NoError(t, relay.Execute(context.Background()))
			assert.Equal(t, tt.expectedDeleted, uow.outbox.deleted)
			assert.Equal(t, tt.expectedUpdates, uow.outbox.updates)
			assert.Len(t, publisher.published, tt.expectedRelayed)
		})
	}
}

func TestInitRelayOutbox_Initialize(t *testing.T) {
	iro := InitRelayOutbox{Logger: discardLogger(), Publisher: &stubPublisher{}}

	ctx, err := iro.Initialize(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, ctx)

	registered, err := depend.Resolve[RelayOutbox]()
	assert.NoError(t, err)
	assert.NotNil(t, registered)
}
