package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// SyncEmbedding defines the interface for the embedding synchronization use
// case. It converges a listing's embedding triple with its current content.
type SyncEmbedding interface {
	Execute(ctx context.Context, listingID uuid.UUID) error
}

// SyncEmbeddingImpl is the implementation of the SyncEmbedding use case.
type SyncEmbeddingImpl struct {
	uow         domain.UnitOfWork
	encoder     domain.SemanticEncoder
	logger      *log.Logger
	model       string
	callTimeout time.Duration
}

// NewSyncEmbeddingImpl creates a new instance of SyncEmbeddingImpl.
func NewSyncEmbeddingImpl(
	uow domain.UnitOfWork,
	encoder domain.SemanticEncoder,
	logger *log.Logger,
	model string,
	callTimeout time.Duration,
) SyncEmbeddingImpl {
	return SyncEmbeddingImpl{
		uow:         uow,
		encoder:     encoder,
		logger:      logger,
		model:       model,
		callTimeout: callTimeout,
	}
}

// Execute regenerates the listing's embedding when its stored fingerprint no
// longer matches current content. Re-running on an unchanged listing is a
// no-op; a lost embedding write means a concurrent sync ran against newer
// content, which is also convergence, not an error.
func (sei SyncEmbeddingImpl) Execute(ctx context.Context, listingID uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	listing, found, err := sei.uow.Listing().GetListing(spanCtx, listingID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("listing with ID %s not found", listingID))
		telemetry.RecordErrorAndStatus(span, err)
		return err
	}

	if !domain.VectorizableStatus(listing.Status) {
		RecordEmbeddingSync(spanCtx, "noop")
		return nil
	}

	fingerprint := domain.ContentFingerprint(listing)
	if listing.Embedding != nil && listing.ContentFingerprint == fingerprint {
		RecordEmbeddingSync(spanCtx, "noop")
		return nil
	}

	callCtx, cancel := context.WithTimeout(spanCtx, sei.callTimeout)
	defer cancel()

	vector, err := sei.encoder.VectorizeListing(callCtx, sei.model, listing)
	if err != nil {
		RecordEmbeddingSync(spanCtx, "failed")
		telemetry.RecordErrorAndStatus(span, err)
		return err
	}
	if len(vector.Vector) != domain.EmbeddingDimensions {
		err := fmt.Errorf("provider returned vector of length %d, want %d", len(vector.Vector), domain.EmbeddingDimensions)
		RecordEmbeddingSync(spanCtx, "failed")
		telemetry.RecordErrorAndStatus(span, err)
		return err
	}
	RecordEmbeddingTokens(spanCtx, vector.TotalTokens)

	swapped, err := sei.uow.Listing().CompareAndSwapEmbedding(
		spanCtx,
		listing.ID,
		listing.ContentFingerprint,
		vector.Vector,
		fingerprint,
		listing.EmbeddingVersion+1,
	)
	if telemetry.RecordErrorAndStatus(span, err) {
		RecordEmbeddingSync(spanCtx, "failed")
		return err
	}
	if !swapped {
		sei.logger.Printf("embedding write for listing %s superseded by a concurrent sync", listing.ID)
		RecordEmbeddingSync(spanCtx, "superseded")
		return nil
	}

	RecordEmbeddingSync(spanCtx, "written")
	return nil
}

// InitSyncEmbedding initializes the SyncEmbedding use case and registers it in
// the dependency container.
type InitSyncEmbedding struct {
	Uow             domain.UnitOfWork      `resolve:""`
	Encoder         domain.SemanticEncoder `resolve:""`
	Logger          *log.Logger            `resolve:""`
	Model           string                 `config:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	CallTimeoutSecs int                    `config:"EMBEDDING_CALL_TIMEOUT_SECS" default:"30"`
}

// Initialize registers the SyncEmbeddingImpl use case in the dependency container.
func (ise InitSyncEmbedding) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[SyncEmbedding](NewSyncEmbeddingImpl(
		ise.Uow,
		ise.Encoder,
		ise.Logger,
		ise.Model,
		time.Duration(ise.CallTimeoutSecs)*time.Second,
	))
	return ctx, nil
}
