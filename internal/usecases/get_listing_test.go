package usecases

import (
	"context"
	"testing"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kvartira/listinghub/internal/domain"
)

func TestGetListingImpl_Execute(t *testing.T) {
	listingID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	agentID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	listing := publishableListing(listingID, agentID)

	tests := map[string]struct {
		listings        []domain.Listing
		repoErr         error
		queryID         uuid.UUID
		expectedListing domain.Listing
		expectedErr     error
	}{
		"success": {
			listings:        []domain.Listing{listing},
			queryID:         listingID,
			expectedListing: listing,
		},
		"not-found": {
			listings:    []domain.Listing{listing},
			queryID:     uuid.MustParse("99999999-9999-9999-9999-999999999999"),
			expectedErr: domain.NewNotFoundErr("listing with ID 99999999-9999-9999-9999-999999999999 not found"),
		},
		"repository-error": {
			listings:    []domain.Listing{listing},
			queryID:     listingID,
			repoErr:     assert.AnError,
			expectedErr: assert.AnError,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			uow := newFakeUnitOfWork(tt.listings...)
			uow.listing.err = tt.repoErr

			gli := NewGetListingImpl(uow)

			got, gotErr := gli.Execute(context.Background(), tt.queryID)
			assert.Equal(t, tt.expectedErr, gotErr)
			assert.Equal(t, tt.expectedListing, got)
		})
	}
}

func TestInitGetListing_Initialize(t *testing.T) {
	igl := InitGetListing{}

	ctx, err := igl.Initialize(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, ctx)

	registered, err := depend.Resolve[GetListing]()
	assert.NoError(t, err)
	assert.NotNil(t, registered)
}
