package usecases

import (
	"context"
	"fmt"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// GetListing defines the interface for the GetListing use case.
type GetListing interface {
	Execute(ctx context.Context, listingID uuid.UUID) (domain.Listing, error)
}

// GetListingImpl is the implementation of the GetListing use case.
type GetListingImpl struct {
	uow domain.UnitOfWork
}

// NewGetListingImpl creates a new instance of GetListingImpl.
func NewGetListingImpl(uow domain.UnitOfWork) GetListingImpl {
	return GetListingImpl{uow: uow}
}

// Execute retrieves a single listing by id.
func (gli GetListingImpl) Execute(ctx context.Context, listingID uuid.UUID) (domain.Listing, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	listing, found, err := gli.uow.Listing().GetListing(spanCtx, listingID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.Listing{}, err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("listing with ID %s not found", listingID))
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Listing{}, err
	}

	return listing, nil
}

// InitGetListing initializes the GetListing use case and registers it in the
// dependency container.
type InitGetListing struct {
	Uow domain.UnitOfWork `resolve:""`
}

// Initialize registers the GetListingImpl use case in the dependency container.
func (igl InitGetListing) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[GetListing](NewGetListingImpl(igl.Uow))
	return ctx, nil
}
