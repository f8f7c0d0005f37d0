package usecases

import (
	"context"
	"fmt"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// TransitionListing defines the interface for lifecycle transitions other than
// publish: unlist, reserve, release, close.
type TransitionListing interface {
	Execute(ctx context.Context, actor domain.Actor, listingID uuid.UUID, kind domain.TransitionKind) (domain.Listing, error)
}

// TransitionListingImpl is the implementation of the TransitionListing use case.
type TransitionListingImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
}

// NewTransitionListingImpl creates a new instance of TransitionListingImpl.
func NewTransitionListingImpl(uow domain.UnitOfWork, timeProvider domain.CurrentTimeProvider) TransitionListingImpl {
	return TransitionListingImpl{
		uow:          uow,
		timeProvider: timeProvider,
	}
}

// Execute applies one lifecycle transition against the persisted status. The
// conditional write is the sole arbiter of whether the transition applied; a
// lost race surfaces as InvalidTransition, never as a silent retry.
func (tli TransitionListingImpl) Execute(ctx context.Context, actor domain.Actor, listingID uuid.UUID, kind domain.TransitionKind) (domain.Listing, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if !kind.Valid() || kind == domain.TransitionKind_Publish {
		err := domain.NewValidationErr(fmt.Sprintf("unknown transition kind: %s", kind))
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Listing{}, err
	}

	now := tli.timeProvider.Now()
	var listing domain.Listing

	if err := tli.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
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

		next, err := domain.NextStatus(current.Status, kind)
		if err != nil {
			return err
		}

		swapped, err := uow.Listing().CompareAndSwapStatus(spanCtx, listingID, current.Status, next, now)
		if err != nil {
			return err
		}
		if !swapped {
			return domain.NewInvalidTransitionErr(current.Status, next)
		}

		if err := uow.Outbox().RecordEvent(spanCtx, domain.ListingEvent{
			Type:      domain.EventTypeForTransition(kind),
			ListingID: current.ID,
			AgentID:   current.AgentID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		listing = current
		listing.Status = next
		listing.UpdatedAt = now
		return nil
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Listing{}, err
	}

	RecordListingTransition(spanCtx, kind)
	return listing, nil
}

// InitTransitionListing initializes the TransitionListing use case and
// registers it in the dependency container.
type InitTransitionListing struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
}

// Initialize registers the TransitionListingImpl use case in the dependency container.
func (itl InitTransitionListing) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[TransitionListing](NewTransitionListingImpl(itl.Uow, itl.TimeService))
	return ctx, nil
}
