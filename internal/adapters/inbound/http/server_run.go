package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
	"github.com/kvartira/listinghub/internal/usecases"
)

// ListingHubServer is the REST API server for the listing marketplace core.
type ListingHubServer struct {
	Port                       int                           `config:"HTTP_PORT" default:"8080"`
	Logger                     *log.Logger                   `resolve:""`
	CreateListingUseCase       usecases.CreateListing        `resolve:""`
	GetListingUseCase          usecases.GetListing           `resolve:""`
	ListListingsUseCase        usecases.ListListings         `resolve:""`
	UpdateListingUseCase       usecases.UpdateListingContent `resolve:""`
	PublishListingUseCase      usecases.PublishListing       `resolve:""`
	TransitionListingUseCase   usecases.TransitionListing    `resolve:""`
	FindSimilarListingsUseCase usecases.FindSimilarListings  `resolve:""`
	TimeProvider               domain.CurrentTimeProvider    `resolve:""`
}

func (api ListingHubServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Introspection endpoint for debugging and testing purposes
	mux.HandleFunc("GET /introspect", IntrospectHandler)

	mux.HandleFunc("POST /v1/listings", api.CreateListing)
	mux.HandleFunc("GET /v1/listings", api.ListListings)
	mux.HandleFunc("GET /v1/listings/{id}", api.GetListing)
	mux.HandleFunc("PATCH /v1/listings/{id}", api.UpdateListing)
	mux.HandleFunc("POST /v1/listings/{id}/publish", api.PublishListing)
	mux.HandleFunc("GET /v1/listings/{id}/similar", api.FindSimilarListings)
	for _, kind := range []domain.TransitionKind{
		domain.TransitionKind_Unlist,
		domain.TransitionKind_Reserve,
		domain.TransitionKind_Release,
		domain.TransitionKind_Close,
	} {
		mux.HandleFunc(fmt.Sprintf("POST /v1/listings/{id}/%s", kind), api.transitionHandler(kind))
	}

	var h http.Handler = telemetry.Middleware("listinghub-api")(mux)

	// Apply CORS at the top-level so preflight requests hit it, too.
	return cors.AllowAll().Handler(h)
}

// Run starts the HTTP server for the ListingHubServer.
func (api ListingHubServer) Run(ctx context.Context) error {
	s := &http.Server{
		Handler: api.routes(),
		Addr:    fmt.Sprintf(":%d", api.Port),
	}

	errCh := make(chan error, 1)
	go func() {
		api.Logger.Printf("ListingHubServer: Listening on port %d", api.Port)
		errCh <- s.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		if err != nil {
			api.Logger.Printf("ListingHubServer: error during shutdown: %v", err)
		} else {
			api.Logger.Println("ListingHubServer: stopped")
		}
		return err
	case err := <-errCh:
		return err
	}
}

// IsReady checks if the ListingHubServer is ready by performing a health check.
func (api ListingHubServer) IsReady(ctx context.Context) error {
	resp, err := http.Get(fmt.Sprintf("http://:%d/healthz", api.Port))
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
