package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvartira/listinghub/internal/domain"
)

func publishableListing(id, agentID uuid.UUID) domain.Listing {
	return domain.Listing{
		ID:              id,
		AgentID:         agentID,
		Status:          domain.ListingStatus_DRAFT,
		Title:           "Sunny two bedroom apartment",
		Description:     "Bright renovated apartment with a balcony, five minutes from the metro station",
		PropertyType:    domain.PropertyType_APARTMENT,
		TransactionType: domain.TransactionType_RENT,
		Location:        domain.Location{Province: "Almaty", City: "Almaty", District: "Medeu"},
		Bedrooms:        2,
		Bathrooms:       1,
		Price:           250000,
	}
}

func TestPublishListingImpl_Execute(t *testing.T) {
	listingID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	agentID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	otherAgent := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	fixedTime := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		listing        func() domain.Listing
		actor          domain.Actor
		forceCASMiss   bool
		expectedErr    error
		expectedStatus domain.ListingStatus
		expectSync     bool
		expectEvent    bool
	}{
		"publish-from-draft": {
			listing:        func() domain.Listing { return publishableListing(listingID, agentID) },
			actor:          domain.Actor{ID: agentID},
			expectedStatus: domain.ListingStatus_AVAILABLE,
			expectSync:     true,
			expectEvent:    true,
		},
		"republish-from-unlisted": {
			listing: func() domain.Listing {
				l := publishableListing(listingID, agentID)
				l.Status = domain.ListingStatus_UNLISTED
				l.PublishedAt = &earlier
				return l
			},
			actor:          domain.Actor{ID: agentID},
			expectedStatus: domain.ListingStatus_AVAILABLE,
			expectSync:     true,
			expectEvent:    true,
		},
		"admin-override": {
			listing:        func() domain.Listing { return publishableListing(listingID, agentID) },
			actor:          domain.Actor{ID: otherAgent, Admin: true},
			expectedStatus: domain.ListingStatus_AVAILABLE,
			expectSync:     true,
			expectEvent:    true,
		},
		"not-owner": {
			listing:        func() domain.Listing { return publishableListing(listingID, agentID) },
			actor:          domain.Actor{ID: otherAgent},
			expectedErr:    domain.NewNotOwnerErr("actor aaaaaaaa-0000-0000-0000-000000000002 does not own listing 123e4567-e89b-12d3-a456-426614174000"),
			expectedStatus: domain.ListingStatus_DRAFT,
		},
		"invalid-transition-already-available": {
			listing: func() domain.Listing {
				l := publishableListing(listingID, agentID)
				l.Status = domain.ListingStatus_AVAILABLE
				return l
			},
			actor:          domain.Actor{ID: agentID},
			expectedErr:    domain.NewInvalidTransitionErr(domain.ListingStatus_AVAILABLE, domain.ListingStatus_AVAILABLE),
			expectedStatus: domain.ListingStatus_AVAILABLE,
		},
		"incomplete-listing-reports-every-violation": {
			listing: func() domain.Listing {
				l := publishableListing(listingID, agentID)
				l.Title = "Short"
				l.Description = "Too short"
				return l
			},
			actor: domain.Actor{ID: agentID},
			expectedErr: domain.NewIncompleteListingErr([]string{
				"title must be at least 10 characters",
				"description must be at least 50 characters",
			}),
			expectedStatus: domain.ListingStatus_DRAFT,
		},
		"lost-status-race": {
			listing:        func() domain.Listing { return publishableListing(listingID, agentID) },
			actor:          domain.Actor{ID: agentID},
			forceCASMiss:   true,
			expectedErr:    domain.NewInvalidTransitionErr(domain.ListingStatus_DRAFT, domain.ListingStatus_AVAILABLE),
			expectedStatus: domain.ListingStatus_DRAFT,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			uow := newFakeUnitOfWork(tt.listing())
			uow.listing.forceStatusCASMiss = tt.forceCASMiss

			var synced []uuid.UUID
			pli := NewPublishListingImpl(uow, fixedClock{now: fixedTime}, &stubSync{}, discardLogger())
			pli.scheduleSync = func(id uuid.UUID) { synced = append(synced, id) }

			got, gotErr := pli.Execute(context.Background(), tt.actor, listingID)
			assert.Equal(t, tt.expectedErr, gotErr)

			stored, _, _ := uow.listing.GetListing(context.Background(), listingID)
			assert.Equal(t, tt.expectedStatus, stored.Status)

			if tt.expectSync {
				assert.Equal(t, []uuid.UUID{listingID}, synced)
			} else {
				assert.Empty(t, synced)
			}
			if tt.expectEvent {
				require.Len(t, uow.outbox.recorded, 1)
				assert.Equal(t, domain.EventType_LISTING_PUBLISHED, uow.outbox.recorded[0].Type)
				assert.Equal(t, listingID, uow.outbox.recorded[0].ListingID)
			} else {
				assert.Empty(t, uow.outbox.recorded)
			}
			if gotErr == nil {
				require.NotNil(t, got.PublishedAt)
				require.NotNil(t, stored.PublishedAt)
			}
		})
	}
}

func TestPublishListingImpl_Execute_PublishedAtSetOnce(t *testing.T) {
	listingID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	agentID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	firstPublish := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	secondPublish := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	listing := publishableListing(listingID, agentID)
	listing.Status = domain.ListingStatus_UNLISTED
	listing.PublishedAt = &firstPublish

	uow := newFakeUnitOfWork(listing)
	pli := NewPublishListingImpl(uow, fixedClock{now: secondPublish}, &stubSync{}, discardLogger())
	pli.scheduleSync = func(uuid.UUID) {}

	got, err := pli.Execute(context.Background(), domain.Actor{ID: agentID}, listingID)
	assert.NoError(t, err)
	assert.Equal(t, firstPublish, *got.PublishedAt)

	stored, _, _ := uow.listing.GetListing(context.Background(), listingID)
	assert.Equal(t, firstPublish, *stored.PublishedAt)
}

func TestInitPublishListing_Initialize(t *testing.T) {
	ipl := InitPublishListing{Sync: &stubSync{}, Logger: discardLogger()}

	ctx, err := ipl.Initialize(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, ctx)

	registered, err := depend.Resolve[PublishListing]()
	assert.NoError(t, err)
	assert.NotNil(t, registered)
}
