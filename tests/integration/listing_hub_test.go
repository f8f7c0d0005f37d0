//go:build integration

package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kvartira/listinghub/internal/app"
)

const apiBaseURL = "http://localhost:8080"

var agentID = uuid.New()

func TestMain(m *testing.M) {
	embeddings := newEmbeddingsStub()
	defer embeddings.Close()

	listingHub := app.NewListingHubApp(
		&initEnvVars{
			envVars: map[string]string{
				"VAULT_ADDR":                  "http://localhost:8200",
				"VAULT_TOKEN":                 "root-token",
				"VAULT_MOUNT_PATH":            "secret",
				"VAULT_SECRET_PATH":           "listinghub",
				"OTEL_EXPORTER_OTLP_ENDPOINT": "http://localhost:4318",
				"DB_HOST":                     "localhost",
				"DB_PORT":                     "5432",
				"DB_NAME":                     "listinghubdb",
				"PUBSUB_EMULATOR_HOST":        "localhost:8681",
				"PUBSUB_PROJECT_ID":           "local-dev",
				"EMBEDDINGS_HOST":             embeddings.URL,
				"EMBEDDINGS_API_KEY":          "test-key",
				"EMBEDDING_SWEEP_INTERVAL":    "1s",
				"FETCH_OUTBOX_INTERVAL":       "500ms",
			},
		},
		&InitDockerCompose{},
	)

	cancelCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := listingHub.RunAsync(cancelCtx)

	err := listingHub.WaitForReadiness(cancelCtx, 10*time.Minute)
	if err != nil {
		cancel()
		log.Fatalf("ListingHub app failed to become ready: %v", err)
	}

	// Run tests
	code := m.Run()

	// Shutdown the app
	cancel()

	select {
	case <-time.After(1 * time.Minute):
		log.Fatalf("ListingHub app did not shut down in time")
	case err = <-shutdownCh:
		if err != nil {
			log.Fatalf("ListingHub app shutdown with error: %v", err)
		} else {
			log.Printf("ListingHub app shut down gracefully")
		}
	}

	os.Exit(code)
}

func TestListingHub_RestAPI(t *testing.T) {
	var first, second listingResp

	t.Run("create-listings", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, "/v1/listings", agentID, createListingReq{
			Title:           "Bright two bedroom flat near the park",
			Description:     "A sunny apartment with a renovated kitchen, two balconies, and a view over the central park alleys.",
			PropertyType:    "APARTMENT",
			TransactionType: "SALE",
			Location:        locationReq{Province: "Almaty", City: "Almaty", District: "Medeu"},
			Bedrooms:        2,
			Bathrooms:       1,
			Features:        []string{"balcony", "parking"},
			Price:           42000000,
		}, &first)
		require.Equal(t, http.StatusCreated, status)
		require.Equal(t, "DRAFT", first.Status)
		require.Nil(t, first.PublishedAt)

		status = doJSON(t, http.MethodPost, "/v1/listings", agentID, createListingReq{
			Title:           "Spacious three bedroom flat near the park",
			Description:     "A large apartment with a modern kitchen, a balcony, and quick access to the central park alleys.",
			PropertyType:    "APARTMENT",
			TransactionType: "SALE",
			Location:        locationReq{Province: "Almaty", City: "Almaty", District: "Medeu"},
			Bedrooms:        3,
			Bathrooms:       2,
			Features:        []string{"balcony"},
			Price:           56000000,
		}, &second)
		require.Equal(t, http.StatusCreated, status)
	})

	t.Run("publish-listings", func(t *testing.T) {
		for _, id := range []uuid.UUID{first.ID, second.ID} {
			var published listingResp
			status := doJSON(t, http.MethodPost, "/v1/listings/"+id.String()+"/publish", agentID, nil, &published)
			require.Equal(t, http.StatusOK, status)
			require.Equal(t, "AVAILABLE", published.Status)
			require.NotNil(t, published.PublishedAt)
		}
	})

	t.Run("update-is-owner-only", func(t *testing.T) {
		newTitle := "Hijacked title that should never land"
		var errResp errorResp
		status := doJSON(t, http.MethodPatch, "/v1/listings/"+first.ID.String(), uuid.New(), updateListingReq{
			Title: &newTitle,
		}, &errResp)
		require.Equal(t, http.StatusForbidden, status)
		require.Equal(t, "FORBIDDEN", errResp.Error.Code)
	})

	t.Run("find-similar-listings", func(t *testing.T) {
		// The embedding sweeper runs every second; poll until both
		// published listings have been vectorized.
		require.Eventually(t, func() bool {
			var similar similarListingsResp
			status := doJSON(t, http.MethodGet, "/v1/listings/"+first.ID.String()+"/similar", agentID, nil, &similar)
			return status == http.StatusOK && len(similar.Items) == 1 && similar.Items[0].ID == second.ID
		}, 2*time.Minute, 2*time.Second, "expected the second listing to show up as a similar result")
	})

	t.Run("list-available-listings", func(t *testing.T) {
		var listed listListingsResp
		status := doJSON(t, http.MethodGet, "/v1/listings?status=AVAILABLE", agentID, nil, &listed)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, listed.Items, 2)
	})

	t.Run("reserve-release-cycle", func(t *testing.T) {
		var reserved listingResp
		status := doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/reserve", agentID, nil, &reserved)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "RESERVED", reserved.Status)

		var errResp errorResp
		status = doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/reserve", agentID, nil, &errResp)
		require.Equal(t, http.StatusConflict, status)
		require.Equal(t, "CONFLICT", errResp.Error.Code)

		var released listingResp
		status = doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/release", agentID, nil, &released)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "AVAILABLE", released.Status)
	})

	t.Run("unlist-and-close", func(t *testing.T) {
		var unlisted listingResp
		status := doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/unlist", agentID, nil, &unlisted)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "UNLISTED", unlisted.Status)

		// Closing is only legal from AVAILABLE or RESERVED.
		var errResp errorResp
		status = doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/close", agentID, nil, &errResp)
		require.Equal(t, http.StatusConflict, status)
		require.Equal(t, "CONFLICT", errResp.Error.Code)

		var republished listingResp
		status = doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/publish", agentID, nil, &republished)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "AVAILABLE", republished.Status)
		require.Equal(t, unlisted.PublishedAt, republished.PublishedAt, "republish must keep the original published_at")

		var closed listingResp
		status = doJSON(t, http.MethodPost, "/v1/listings/"+first.ID.String()+"/close", agentID, nil, &closed)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "CLOSED", closed.Status)

		var similar similarListingsResp
		status = doJSON(t, http.MethodGet, "/v1/listings/"+second.ID.String()+"/similar", agentID, nil, &similar)
		require.Equal(t, http.StatusOK, status)
		require.Empty(t, similar.Items, "closed listings must not appear in similarity results")
	})
}

// newEmbeddingsStub serves deterministic embedding vectors so the sweep and
// similarity paths run without a real provider.
func newEmbeddingsStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		seed := sha256.Sum256([]byte(req.Input))
		vector := make([]float64, 1536)
		for i := range vector {
			chunk := sha256.Sum256(append(seed[:], byte(i), byte(i>>8)))
			vector[i] = float64(binary.BigEndian.Uint16(chunk[:2]))/65535.0 - 0.5
		}

		resp := map[string]any{
			"data":  []map[string]any{{"embedding": vector, "index": 0}},
			"usage": map[string]any{"total_tokens": len(req.Input) / 4},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
}

func doJSON(t *testing.T, method, path string, actor uuid.UUID, body any, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err, "failed to encode request body")
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, apiBaseURL+path, reqBody)
	require.NoError(t, err, "failed to build request")
	req.Header.Set("X-Actor-Id", actor.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, fmt.Sprintf("failed to call %s %s", method, path))
	defer resp.Body.Close() //nolint:errcheck

	if out != nil {
		err = json.NewDecoder(resp.Body).Decode(out)
		require.NoError(t, err, "failed to decode response body")
	}

	return resp.StatusCode
}

type locationReq struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
}

type createListingReq struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	PropertyType    string      `json:"property_type"`
	TransactionType string      `json:"transaction_type"`
	Location        locationReq `json:"location"`
	Bedrooms        int         `json:"bedrooms"`
	Bathrooms       int         `json:"bathrooms"`
	Features        []string    `json:"features"`
	Price           float64     `json:"price"`
}

type updateListingReq struct {
	Title *string `json:"title,omitempty"`
}

type listingResp struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"published_at"`
}

type listListingsResp struct {
	Items []listingResp `json:"items"`
}

type similarListingsResp struct {
	Items []struct {
		ID    uuid.UUID `json:"id"`
		Score float64   `json:"score"`
	} `json:"items"`
}

type initEnvVars struct {
	envVars map[string]string
}

func (i *initEnvVars) Initialize(ctx context.Context) (context.Context, error) {
	for key, value := range i.envVars {
		os.Setenv(key, value) //nolint:errcheck
	}
	return ctx, nil
}

func (i *initEnvVars) Close() {
	for key := range i.envVars {
		os.Unsetenv(key) //nolint:errcheck
	}
}

type errorResp struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}
