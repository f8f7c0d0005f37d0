package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvartira/listinghub/internal/domain"
)

func encodableListing() domain.Listing {
	return domain.Listing{
		ID:              uuid.New(),
		AgentID:         uuid.New(),
		Status:          domain.ListingStatus_AVAILABLE,
		Title:           "Sunny two bedroom apartment",
		Description:     "Bright renovated apartment close to the metro",
		PropertyType:    domain.PropertyType_APARTMENT,
		TransactionType: domain.TransactionType_RENT,
		Location:        domain.Location{Province: "Almaty", City: "Almaty", District: "Medeu"},
		Bedrooms:        2,
		Bathrooms:       1,
		Features:        []string{"balcony", "parking"},
		Price:           250000,
	}
}

func TestEncoder_VectorizeListing(t *testing.T) {
	listing := encodableListing()

	tests := map[string]struct {
		handler         http.HandlerFunc
		expectedErrType error
		expectedVector  []float64
		expectedTokens  int
	}{
		"success": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req EmbeddingsRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "/v1/embeddings", r.URL.Path)
				assert.Equal(t, "text-embedding-3-small", req.Model)
				assert.Equal(t, domain.BuildEmbeddingText(listing), req.Input)

				resp := EmbeddingsResponse{
					Model: req.Model,
					Data: []EmbeddingData{
						{Embedding: []float64{0.1, 0.2, 0.3}, Index: 0, Object: "embedding"},
					},
					Usage: EmbeddingsUsage{PromptTokens: 42, TotalTokens: 42},
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(resp) //nolint:errcheck
			},
			expectedVector: []float64{0.1, 0.2, 0.3},
			expectedTokens: 42,
		},
		"server-error-is-unavailable": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model overloaded", http.StatusInternalServerError)
			},
			expectedErrType: &domain.ProviderUnavailableErr{},
		},
		"empty-data-is-unavailable": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(EmbeddingsResponse{}) //nolint:errcheck
			},
			expectedErrType: &domain.ProviderUnavailableErr{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			encoder := NewEncoder(NewAPIClient(server.URL, "test-key", server.Client()))

			got, err := encoder.VectorizeListing(context.Background(), "text-embedding-3-small", listing)
			if tt.expectedErrType != nil {
				assert.IsType(t, tt.expectedErrType, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedVector, got.Vector)
				assert.Equal(t, tt.expectedTokens, got.TotalTokens)
			}
		})
	}
}

func TestEncoder_VectorizeListingTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	encoder := NewEncoder(NewAPIClient(server.URL, "", server.Client()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := encoder.VectorizeListing(ctx, "text-embedding-3-small", encodableListing())
	assert.IsType(t, &domain.ProviderTimeoutErr{}, err)
}

func TestInitEncoder_Initialize(t *testing.T) {
	init := InitEncoder{
		HttpClient:     http.DefaultClient,
		EmbeddingsHost: "http://localhost:8080",
	}

	ctx, err := init.Initialize(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, ctx)

	registered, err := depend.Resolve[domain.SemanticEncoder]()
	assert.NoError(t, err)
	assert.NotNil(t, registered)
}
