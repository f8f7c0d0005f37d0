package openai

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

// Encoder adapts APIClient to the domain.SemanticEncoder interface. Provider
// failures surface as the recoverable domain error kinds so callers can retry
// without inspecting transport details.
type Encoder struct {
	client APIClient
}

// NewEncoder creates a new encoder backed by the given client.
func NewEncoder(client APIClient) Encoder {
	return Encoder{client: client}
}

// VectorizeListing implements domain.SemanticEncoder.
func (e Encoder) VectorizeListing(ctx context.Context, model string, listing domain.Listing) (domain.EmbeddingVector, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	resp, err := e.client.Embeddings(spanCtx, EmbeddingsRequest{
		Model: model,
		Input: domain.BuildEmbeddingText(listing),
	})
	if err != nil {
		err = classifyProviderErr(err)
		telemetry.RecordErrorAndStatus(span, err)
		return domain.EmbeddingVector{}, err
	}

	if len(resp.Data) == 0 {
		err := domain.NewProviderUnavailableErr("embeddings response contained no data")
		telemetry.RecordErrorAndStatus(span, err)
		return domain.EmbeddingVector{}, err
	}

	return domain.EmbeddingVector{
		Vector:      resp.Data[0].Embedding,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// classifyProviderErr maps transport failures onto the domain error kinds.
// Deadline and timeout failures are reported separately from everything else.
func classifyProviderErr(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.NewProviderTimeoutErr(err.Error())
	}
	return domain.NewProviderUnavailableErr(err.Error())
}

// InitEncoder initializes the SemanticEncoder dependency.
type InitEncoder struct {
	HttpClient     *http.Client `resolve:""`
	EmbeddingsHost string       `config:"EMBEDDINGS_HOST" default:"https://api.openai.com"`
	APIKey         string       `config:"EMBEDDINGS_API_KEY" default:""`
}

// Initialize registers the SemanticEncoder.
func (i InitEncoder) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.SemanticEncoder](NewEncoder(
		NewAPIClient(i.EmbeddingsHost, i.APIKey, i.HttpClient),
	))
	return ctx, nil
}
