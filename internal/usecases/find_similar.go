package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/common"
	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

const (
	minSimilarResults = 1
	maxSimilarResults = 12
)

// FindSimilarListings defines the interface for the similarity retrieval use case.
type FindSimilarListings interface {
	Execute(ctx context.Context, listingID uuid.UUID, k int) ([]domain.ListingSummary, error)
}

// FindSimilarListingsImpl is the implementation of the FindSimilarListings use case.
type FindSimilarListingsImpl struct {
	uow domain.UnitOfWork
}

// NewFindSimilarListingsImpl creates a new instance of FindSimilarListingsImpl.
func NewFindSimilarListingsImpl(uow domain.UnitOfWork) FindSimilarListingsImpl {
	return FindSimilarListingsImpl{uow: uow}
}

type scoredCandidate struct {
	candidate domain.SimilarityCandidate
	score     float64
}

// Execute returns the top-k AVAILABLE listings most similar to the query
// listing, ranked by cosine similarity with ties broken by most recent
// publishedAt. A query listing without an embedding yields an empty result;
// retrieval never computes one synchronously.
func (fsl FindSimilarListingsImpl) Execute(ctx context.Context, listingID uuid.UUID, k int) ([]domain.ListingSummary, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if k < minSimilarResults {
		k = minSimilarResults
	}
	if k > maxSimilarResults {
		k = maxSimilarResults
	}

	repo := fsl.uow.Listing()
	query, found, err := repo.GetListing(spanCtx, listingID)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	if !found {
		err := domain.NewNotFoundErr(fmt.Sprintf("listing with ID %s not found", listingID))
		telemetry.RecordErrorAndStatus(span, err)
		return nil, err
	}
	if query.Embedding == nil {
		return []domain.ListingSummary{}, nil
	}

	candidates, err := repo.ListAvailableWithEmbedding(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == listingID {
			continue
		}
		score, ok := common.CosineSimilarity(query.Embedding, candidate.Embedding)
		if !ok {
			continue
		}
		scored = append(scored, scoredCandidate{candidate: candidate, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].candidate.PublishedAt.After(scored[j].candidate.PublishedAt)
	})
	if len(scored) > k {
		scored = scored[:k]
	}

	summaries := make([]domain.ListingSummary, 0, len(scored))
	for _, sc := range scored {
		listing, found, err := repo.GetListing(spanCtx, sc.candidate.ID)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		if !found || listing.Status != domain.ListingStatus_AVAILABLE {
			continue
		}
		summaries = append(summaries, summarize(listing, sc.score))
	}

	return summaries, nil
}

func summarize(listing domain.Listing, score float64) domain.ListingSummary {
	summary := domain.ListingSummary{
		ID:              listing.ID,
		Title:           listing.Title,
		PropertyType:    listing.PropertyType,
		TransactionType: listing.TransactionType,
		Location:        listing.Location,
		Price:           listing.Price,
		Score:           score,
	}
	if listing.PublishedAt != nil {
		summary.PublishedAt = *listing.PublishedAt
	}
	return summary
}

// InitFindSimilarListings initializes the FindSimilarListings use case and
// registers it in the dependency container.
type InitFindSimilarListings struct {
	Uow domain.UnitOfWork `resolve:""`
}

// Initialize registers the FindSimilarListingsImpl use case in the dependency container.
func (ifs InitFindSimilarListings) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[FindSimilarListings](NewFindSimilarListingsImpl(ifs.Uow))
	return ctx, nil
}
