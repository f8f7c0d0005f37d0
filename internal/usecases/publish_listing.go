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

// PublishListing defines the interface for the PublishListing use case.
type PublishListing interface {
	Execute(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (domain.Listing, error)
}

// PublishListingImpl is the implementation of the PublishListing use case.
type PublishListingImpl struct {
	uow          domain.UnitOfWork
	timeProvider domain.CurrentTimeProvider
	scheduleSync func(listingID uuid.UUID)
}

// NewPublishListingImpl creates a new instance of PublishListingImpl. The
// embedding sync runs off the request path: publish success never depends on
// the provider.
func NewPublishListingImpl(
	uow domain.UnitOfWork,
	timeProvider domain.CurrentTimeProvider,
	sync SyncEmbedding,
	logger *log.Logger,
) PublishListingImpl {
	return PublishListingImpl{
		uow:          uow,
		timeProvider: timeProvider,
		scheduleSync: func(listingID uuid.UUID) {
			go func() {
				if err := sync.Execute(context.Background(), listingID); err != nil {
					logger.Printf("embedding sync after publish failed for listing %s: %v", listingID, err)
				}
			}()
		},
	}
}

// Execute moves a listing into AVAILABLE. The validation gate reports every
// violated rule at once, and publishedAt is set only on the first publish.
func (pli PublishListingImpl) Execute(ctx context.Context, actor domain.Actor, listingID uuid.UUID) (domain.Listing, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	now := pli.timeProvider.Now()
	var listing domain.Listing

	if err := pli.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
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

		next, err := domain.NextStatus(current.Status, domain.TransitionKind_Publish)
		if err != nil {
			return err
		}
		if violations := current.PublishViolations(); len(violations) > 0 {
			return domain.NewIncompleteListingErr(violations)
		}

		swapped, err := uow.Listing().CompareAndSwapStatus(spanCtx, listingID, current.Status, next, now)
		if err != nil {
			return err
		}
		if !swapped {
			// The status moved between the read and the write.
			return domain.NewInvalidTransitionErr(current.Status, next)
		}

		if err := uow.Outbox().RecordEvent(spanCtx, domain.ListingEvent{
			Type:      domain.EventType_LISTING_PUBLISHED,
			ListingID: current.ID,
			AgentID:   current.AgentID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		listing = current
		listing.Status = next
		listing.UpdatedAt = now
		if listing.PublishedAt == nil {
			listing.PublishedAt = &now
		}
		return nil
	}); telemetry.RecordErrorAndStatus(span, err) {
		return domain.Listing{}, err
	}

	RecordListingTransition(spanCtx, domain.TransitionKind_Publish)
	pli.scheduleSync(listingID)

	return listing, nil
}

// InitPublishListing initializes the PublishListing use case and registers it
// in the dependency container.
type InitPublishListing struct {
	Uow         domain.UnitOfWork          `resolve:""`
	TimeService domain.CurrentTimeProvider `resolve:""`
	Sync        SyncEmbedding              `resolve:""`
	Logger      *log.Logger                `resolve:""`
}

// Initialize registers the PublishListingImpl use case in the dependency container.
func (ipl InitPublishListing) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[PublishListing](NewPublishListingImpl(ipl.Uow, ipl.TimeService, ipl.Sync, ipl.Logger))
	return ctx, nil
}
