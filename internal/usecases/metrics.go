package usecases

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kvartira/listinghub/internal/domain"
)

var (
	meter                = otel.Meter("usecases")
	EmbeddingTokensUsed  metric.Int64Counter
	ListingTransitions   metric.Int64Counter
	EmbeddingSyncResults metric.Int64Counter
)

func init() {
	var err error
	EmbeddingTokensUsed, err = meter.Int64Counter(
		"embedding_tokens_used_total",
		metric.WithDescription("Total embedding provider tokens consumed"),
	)
	if err != nil {
		panic(err)
	}

	ListingTransitions, err = meter.Int64Counter(
		"listing_transitions_total",
		metric.WithDescription("Total lifecycle transitions applied"),
	)
	if err != nil {
		panic(err)
	}

	EmbeddingSyncResults, err = meter.Int64Counter(
		"embedding_sync_total",
		metric.WithDescription("Total embedding sync runs by outcome"),
	)
	if err != nil {
		panic(err)
	}
}

// RecordEmbeddingTokens records the number of tokens used by a provider call.
func RecordEmbeddingTokens(ctx context.Context, totalTokens int) {
	EmbeddingTokensUsed.Add(ctx, int64(totalTokens))
}

// RecordListingTransition records one applied lifecycle transition.
func RecordListingTransition(ctx context.Context, kind domain.TransitionKind) {
	ListingTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
	))
}

// RecordEmbeddingSync records the outcome of one sync run: written, noop,
// superseded or failed.
func RecordEmbeddingSync(ctx context.Context, outcome string) {
	EmbeddingSyncResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
