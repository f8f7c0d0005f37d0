package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// UpdateListingParams carries the content fields of a listing update. Nil
// fields are left unchanged.
type UpdateListingParams struct {
	Title           *string
	Description     *string
	PropertyType    *domain.PropertyType
	TransactionType *domain.TransactionType
	Location        *domain.Location
	Bedrooms        *int
	Bathrooms       *int
	Features        *[]string
	Price           *float64
}

// UpdateListingContent defines the interface for the UpdateListingContent use case.
type UpdateListingContent interface {
	Execute(ctx context.Context, actor domain.Actor, listingID uuid.UUID, params UpdateListingParams) (domain.Listing, error)
}

// UpdateListingContentImpl is the implementation of the UpdateListingContent use case.
type UpdateListingContentImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
	scheduleSync func(listingID uuid.UUID)
}

// NewUpdateListingContentImpl creates a new instance of UpdateListingContentImpl.
func NewUpdateListingContentImpl(
	uow domain.UnitOfWork,
	timeProvider domain.CurrentTimeProvider,
	sync SyncEmbedding,
	logger *log.Logger,
) UpdateListingContentImpl {
	return UpdateListingContentImpl{
		uow:          uow,
		timeProvider: timeProvider,
		scheduleSync: func(listingID uuid.UUID) {
			go func() {
				if err := sync.Execute(context.Background(), listingID); err != nil {
					logger.Printf("embedding sync after edit failed for listing %s: %v", listingID, err)
				}
			}()
		},
	}
}

// Execute modifies the content fields of a listing. Edits to a listing past
// DRAFT schedule an embedding sync; drafts are not vectorized until first
// publish.
func (uli UpdateListingContentImpl) Execute(ctx context.Context, actor domain.Actor, listingID uuid.UUID, params UpdateListingParams) (domain.Listing, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	now := uli.timeProvider.Now()
	var listing domain.Listing

	if err := uli.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		current, found, err := uow.Listing().GetListing(spanCtx, listingID)
		if err != nil {
			return err
		}
		if !found {
			return domain.NewNotFoundErr(fmt.Sprintf("listing with ID %s not found", listingID))
		}
		if !actor.CanModify(current) {
			return domain.NewNotOwnerErr(fmt.Sprintf("actor %s does not own listing %s", actor.ID, listingID))
		}
		if current.Status == domain.ListingStatus_CLOSED {
			return domain.NewValidationErr("closed listings cannot be modified")
		}

		applyContentUpdate(&current, params)
		current.UpdatedAt = now

		if err := current.Validate(); err != nil {
			return err
		}
		if current.Status == domain.ListingStatus_AVAILABLE && current.Price <= 0 {
			return domain.NewValidationErr("price must remain greater than zero while published")
		}

		if err := uow.Listing().UpdateContent(spanCtx, current); err != nil {
			return err
		}

		listing = current
		return nil
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Listing{}, err
	}

	if listing.Status != domain.ListingStatus_DRAFT {
		uli.scheduleSync(listingID)
	}

	return listing, nil
}

func applyContentUpdate(listing *domain.Listing, params UpdateListingParams) {
	if params.Title != nil {
		listing.Title = *params.Title
	}
	if params.Description != nil {
		listing.Description = *params.Description
	}
	if params.PropertyType != nil {
		listing.PropertyType = *params.PropertyType
	}
	if params.TransactionType != nil {
		listing.TransactionType = *params.TransactionType
	}
	if params.Location != nil {
		listing.Location = *params.Location
	}
	if params.Bedrooms != nil {
		listing.Bedrooms = *params.Bedrooms
	}
	if params.Bathrooms != nil {
		listing.Bathrooms = *params.Bathrooms
	}
	if params.Features != nil {
		listing.Features = *params.Features
	}
	if params.Price != nil {
		listing.Price = *params.Price
	}
}

// InitUpdateListingContent initializes the UpdateListingContent use case and
// registers it in the dependency container.
type InitUpdateListingContent struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
	Sync        SyncEmbedding              `resolve:""`
	Logger      *log.Logger                `resolve:""`
}

// Initialize registers the UpdateListingContentImpl use case in the dependency container.
func (iul InitUpdateListingContent) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[UpdateListingContent](NewUpdateListingContentImpl(iul.Uow, iul.TimeService, iul.Sync, iul.Logger))
	return ctx, nil
}
