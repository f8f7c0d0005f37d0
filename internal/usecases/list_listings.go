package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

const maxListingsPageSize = 100

// ListListings defines the interface for the ListListings use case.
type ListListings interface {
	// Execute retrieves listings with pagination, newest first. The boolean
	// reports whether more pages exist.
	Execute(ctx context.Context, page, pageSize int, opts ...domain.ListListingsOption) ([]domain.Listing, bool, error)
}

// ListListingsImpl is the implementation of the ListListings use case.
type ListListingsImpl struct {
	uow domain.UnitOfWork
}

// NewListListingsImpl creates a new instance of ListListingsImpl.
func NewListListingsImpl(uow domain.UnitOfWork) ListListingsImpl {
	return ListListingsImpl{uow: uow}
}

// Execute retrieves a page of listings matching the given filters.
func (lli ListListingsImpl) Execute(ctx context.Context, page, pageSize int, opts ...domain.ListListingsOption) ([]domain.Listing, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if page < 1 {
		err := domain.NewValidationErr("page must be at least 1")
		telemetry.RecordErrorAndStatus(span, err)
		return nil, false, err
	}
	if pageSize < 1 || pageSize > maxListingsPageSize {
		err := domain.NewValidationErr("page_size must be between 1 and 100")
		telemetry.RecordErrorAndStatus(span, err)
		return nil, false, err
	}

	listings, hasMore, err := lli.uow.Listing().ListListings(spanCtx, page, pageSize, opts...)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, false, err
	}

	return listings, hasMore, nil
}

// InitListListings initializes the ListListings use case and registers it in
// the dependency container.
type InitListListings struct {
	Uow domain.UnitOfWork `resolve:""`
}

// Initialize registers the ListListingsImpl use case in the dependency container.
func (ill InitListListings) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ListListings](NewListListingsImpl(ill.Uow))
	return ctx, nil
}
