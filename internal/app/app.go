package app

import (
	"os"

	"github.com/cleitonmarx/symbiont"
	"github.com/kvartira/listinghub/internal/adapters/inbound/http"
	"github.com/kvartira/listinghub/internal/adapters/inbound/mcp"
	"github.com/kvartira/listinghub/internal/adapters/inbound/workers"
	"github.com/kvartira/listinghub/internal/adapters/outbound/config"
	"github.com/kvartira/listinghub/internal/adapters/outbound/log"
	"github.com/kvartira/listinghub/internal/adapters/outbound/memory"
	"github.com/kvartira/listinghub/internal/adapters/outbound/openai"
	"github.com/kvartira/listinghub/internal/adapters/outbound/postgres"
	"github.com/kvartira/listinghub/internal/adapters/outbound/pubsub"
	"github.com/kvartira/listinghub/internal/adapters/outbound/time"
	"github.com/kvartira/listinghub/internal/telemetry"
	"github.com/kvartira/listinghub/internal/usecases"
)

// NewListingHubApp creates and returns a new instance of the ListingHub application.
func NewListingHubApp(initializers ...symbiont.Initializer) *symbiont.App {
	return symbiont.NewApp().
		Initialize(initializers...).
		Initialize(
			&log.InitLogger{},
			&telemetry.InitOpenTelemetry{},
			&telemetry.InitHttpClient{},
			&config.InitVaultProvider{},
		).
		Initialize(storageInitializers()...).
		Initialize(
			&time.InitCurrentTimeProvider{},
			&pubsub.InitClient{},
			&pubsub.InitPublisher{},
			&openai.InitEncoder{},

			&usecases.InitSyncEmbedding{},

			&usecases.InitCreateListing{},
			&usecases.InitGetListing{},
			&usecases.InitListListings{},
			&usecases.InitUpdateListingContent{},
			&usecases.InitPublishListing{},
			&usecases.InitTransitionListing{},
			&usecases.InitFindSimilarListings{},
			&usecases.InitSweepEmbeddings{},
			&usecases.InitRelayOutbox{},
		).
		Host(
			&http.ListingHubServer{},
			&mcp.ListingHubMCPServer{},
			&workers.MessageRelay{},
			&workers.EmbeddingSweeper{},
		).
		Introspect(&MermaidGraphIntrospector{})
}

// storageInitializers selects the persistence adapters based on the
// STORAGE_BACKEND environment variable. Postgres is the default; the
// in-memory store is intended for local development and demos.
func storageInitializers() []symbiont.Initializer {
	if os.Getenv("STORAGE_BACKEND") == "memory" {
		return []symbiont.Initializer{&memory.InitStore{}}
	}
	return []symbiont.Initializer{
		&postgres.InitDB{},
		&postgres.InitUnitOfWork{},
		&postgres.InitListingRepository{},
	}
}
