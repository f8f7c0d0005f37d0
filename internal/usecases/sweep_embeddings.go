package usecases

import (
	"context"
	"log"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// SweepEmbeddings defines the interface for the background staleness sweep.
// The sweep finds all persisted state it needs, so it is safe to stop and
// restart at any point.
type SweepEmbeddings interface {
	Execute(ctx context.Context) error
}

// SweepEmbeddingsImpl is the implementation of the SweepEmbeddings use case.
type SweepEmbeddingsImpl struct {
	uow       domain.UnitOfWork
	sync      SyncEmbedding
	logger    *log.Logger
	batchSize int
}

// NewSweepEmbeddingsImpl creates a new instance of SweepEmbeddingsImpl.
func NewSweepEmbeddingsImpl(uow domain.UnitOfWork, sync SyncEmbedding, logger *log.Logger, batchSize int) SweepEmbeddingsImpl {
	return SweepEmbeddingsImpl{
		uow:       uow,
		sync:      sync,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Execute re-syncs every listing whose embedding no longer matches current
// content, paging through the vectorizable set in id order so one cycle
// visits all of it. A failing listing is logged and skipped; the next sweep
// picks it up again.
func (sei SweepEmbeddingsImpl) Execute(ctx context.Context) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	var cursor uuid.UUID
	for {
		listings, err := sei.uow.Listing().ListForEmbeddingSync(spanCtx, cursor, sei.batchSize)
		if telemetry.RecordErrorAndStatus(span, err) {
			return err
		}
		if len(listings) == 0 {
			return nil
		}

		for _, listing := range listings {
			if err := spanCtx.Err(); err != nil {
				return err
			}
			if !domain.EmbeddingStale(listing) {
				continue
			}
			if err := sei.sync.Execute(spanCtx, listing.ID); err != nil {
				sei.logger.Printf("sweep: embedding sync failed for listing %s: %v", listing.ID, err)
			}
		}

		if len(listings) < sei.batchSize {
			return nil
		}
		cursor = listings[len(listings)-1].ID
	}
}

// InitSweepEmbeddings initializes the SweepEmbeddings use case and registers
// it in the dependency container.
type InitSweepEmbeddings struct {
	Uow       domain.UnitOfWork `resolve:""`
	Sync      SyncEmbedding     `resolve:""`
	Logger    *log.Logger       `resolve:""`
	BatchSize int               `config:"EMBEDDING_SWEEP_BATCH_SIZE" default:"50"`
}

// Initialize registers the SweepEmbeddingsImpl use case in the dependency container.
func (ise InitSweepEmbeddings) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[SweepEmbeddings](NewSweepEmbeddingsImpl(ise.Uow, ise.Sync, ise.Logger, ise.BatchSize))
	return ctx, nil
}
