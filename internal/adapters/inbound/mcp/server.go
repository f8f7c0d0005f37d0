// Package mcp exposes the listing retrieval operations as Model Context
// Protocol tools over stdio, so agent runtimes can query the marketplace
// without going through the REST API.
package mcp

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kvartira/listinghub/internal/usecases"
)

// ListingHubMCPServer is a runnable MCP stdio server.
type ListingHubMCPServer struct {
	Enabled                    bool                         `config:"MCP_ENABLED" default:"false"`
	Logger                     *log.Logger                  `resolve:""`
	GetListingUseCase          usecases.GetListing          `resolve:""`
	FindSimilarListingsUseCase usecases.FindSimilarListings `resolve:""`
}

// FindSimilarInput is the input schema of the find_similar_listings tool.
type FindSimilarInput struct {
	ListingID string `json:"listing_id" jsonschema:"ID of the reference listing"`
	K         int    `json:"k,omitempty" jsonschema:"How many results to return, clamped to 1..12"`
}

// SimilarListing is one entry in the find_similar_listings tool output.
type SimilarListing struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	PropertyType    string    `json:"property_type"`
	TransactionType string    `json:"transaction_type"`
	Province        string    `json:"province"`
	City            string    `json:"city"`
	District        string    `json:"district"`
	Price           float64   `json:"price"`
	Score           float64   `json:"score"`
	PublishedAt     time.Time `json:"published_at"`
}

// FindSimilarOutput is the output schema of the find_similar_listings tool.
type FindSimilarOutput struct {
	Items []SimilarListing `json:"items"`
}

// GetListingInput is the input schema of the get_listing tool.
type GetListingInput struct {
	ListingID string `json:"listing_id" jsonschema:"ID of the listing to fetch"`
}

// GetListingOutput is the output schema of the get_listing tool.
type GetListingOutput struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	PropertyType    string     `json:"property_type"`
	TransactionType string     `json:"transaction_type"`
	Province        string     `json:"province"`
	City            string     `json:"city"`
	District        string     `json:"district"`
	Bedrooms        int        `json:"bedrooms"`
	Bathrooms       int        `json:"bathrooms"`
	Features        []string   `json:"features"`
	Price           float64    `json:"price"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}

func (s ListingHubMCPServer) findSimilarListings(ctx context.Context, req *sdk.CallToolRequest, input FindSimilarInput) (*sdk.CallToolResult, FindSimilarOutput, error) {
	listingID, err := uuid.Parse(input.ListingID)
	if err != nil {
		return nil, FindSimilarOutput{}, fmt.Errorf("listing_id is not a UUID: %w", err)
	}

	summaries, err := s.FindSimilarListingsUseCase.Execute(ctx, listingID, input.K)
	if err != nil {
		return nil, FindSimilarOutput{}, err
	}

	out := FindSimilarOutput{Items: []SimilarListing{}}
	for _, summary := range summaries {
		out.Items = append(out.Items, SimilarListing{
			ID:              summary.ID.String(),
			Title:           summary.Title,
			PropertyType:    string(summary.PropertyType),
			TransactionType: string(summary.TransactionType),
			Province:        summary.Location.Province,
			City:            summary.Location.City,
			District:        summary.Location.District,
			Price:           summary.Price,
			Score:           summary.Score,
			PublishedAt:     summary.PublishedAt,
		})
	}
	return nil, out, nil
}

func (s ListingHubMCPServer) getListing(ctx context.Context, req *sdk.CallToolRequest, input GetListingInput) (*sdk.CallToolResult, GetListingOutput, error) {
	listingID, err := uuid.Parse(input.ListingID)
	if err != nil {
		return nil, GetListingOutput{}, fmt.Errorf("listing_id is not a UUID: %w", err)
	}

	listing, err := s.GetListingUseCase.Execute(ctx, listingID)
	if err != nil {
		return nil, GetListingOutput{}, err
	}

	return nil, GetListingOutput{
		ID:              listing.ID.String(),
		Status:          string(listing.Status),
		Title:           listing.Title,
		Description:     listing.Description,
		PropertyType:    string(listing.PropertyType),
		TransactionType: string(listing.TransactionType),
		Province:        listing.Location.Province,
		City:            listing.Location.City,
		District:        listing.Location.District,
		Bedrooms:        listing.Bedrooms,
		Bathrooms:       listing.Bathrooms,
		Features:        listing.Features,
		Price:           listing.Price,
		PublishedAt:     listing.PublishedAt,
	}, nil
}

func (s ListingHubMCPServer) newServer() *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: "listinghub", Version: "1.0.0"}, nil)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "find_similar_listings",
		Description: "Find published listings semantically similar to a reference listing.",
	}, s.findSimilarListings)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_listing",
		Description: "Fetch a single listing by its ID.",
	}, s.getListing)

	return server
}

// Run starts the MCP stdio server when enabled; otherwise it idles until the
// application shuts down.
func (s ListingHubMCPServer) Run(ctx context.Context) error {
	if !s.Enabled {
		s.Logger.Println("ListingHubMCPServer: disabled")
		<-ctx.Done()
		return nil
	}

	s.Logger.Println("ListingHubMCPServer: serving on stdio")
	return s.newServer().Run(ctx, &sdk.StdioTransport{})
}
