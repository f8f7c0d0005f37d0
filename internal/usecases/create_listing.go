package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// CreateListingParams carries the content of a new listing.
type CreateListingParams struct {
	Title           string
	Description     string
	PropertyType    domain.PropertyType
	TransactionType domain.TransactionType
	Location        domain.Location
	Bedrooms        int
	Bathrooms       int
	Features        []string
	Price           float64
}

// CreateListing defines the interface for the CreateListing use case.
type CreateListing interface {
	Execute(ctx context.Context, actor domain.Actor, params CreateListingParams) (domain.Listing, error)
}

// CreateListingImpl is the implementation of the CreateListing use case.
type CreateListingImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
	createUUID   func() uuid.UUID
}

// NewCreateListingImpl creates a new instance of CreateListingImpl.
func NewCreateListingImpl(uow domain.UnitOfWork, timeProvider domain.CurrentTimeProvider) CreateListingImpl {
	return CreateListingImpl{
		uow:          uow,
		timeProvider: timeProvider,
		createUUID:   uuid.New,
	}
}

// Execute creates a new listing in DRAFT on behalf of the acting agent.
func (cli CreateListingImpl) Execute(ctx context.Context, actor domain.Actor, params CreateListingParams) (domain.Listing, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	now := cli.timeProvider.Now()
	listing := domain.Listing{
		ID:              cli.createUUID(),
		AgentID:         actor.ID,
		Status:          domain.ListingStatus_DRAFT,
		Title:           params.Title,
		Description:     params.Description,
		PropertyType:    params.PropertyType,
		TransactionType: params.TransactionType,
		Location:        params.Location,
		Bedrooms:        params.Bedrooms,
		Bathrooms:       params.Bathrooms,
		Features:        params.Features,
		Price:           params.Price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := listing.Validate(); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Listing{}, err
	}

	if err := cli.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		return uow.Listing().CreateListing(spanCtx, listing)
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Listing{}, err
	}

	return listing, nil
}

// InitCreateListing initializes the CreateListing use case and registers it in
// the dependency container.
type InitCreateListing struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
}

// Initialize registers the CreateListingImpl use case in the dependency container.
func (icl InitCreateListing) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[CreateListing](NewCreateListingImpl(icl.Uow, icl.TimeService))
	return ctx, nil
}
