package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListingStatus represents the lifecycle status of a listing.
type ListingStatus string

const (
	// ListingStatus_DRAFT indicates the listing has been created but never published.
	ListingStatus_DRAFT ListingStatus = "DRAFT"
	// ListingStatus_AVAILABLE indicates the listing is published and visible.
	ListingStatus_AVAILABLE ListingStatus = "AVAILABLE"
	// ListingStatus_RESERVED indicates the listing is held for a prospective buyer or tenant.
	ListingStatus_RESERVED ListingStatus = "RESERVED"
	// ListingStatus_UNLISTED indicates the listing was withdrawn from public view.
	ListingStatus_UNLISTED ListingStatus = "UNLISTED"
	// ListingStatus_CLOSED indicates the listing was transacted or removed. Terminal.
	ListingStatus_CLOSED ListingStatus = "CLOSED"
)

// PropertyType categorizes the kind of property being listed.
type PropertyType string

const (
	PropertyType_APARTMENT  PropertyType = "APARTMENT"
	PropertyType_HOUSE      PropertyType = "HOUSE"
	PropertyType_CONDO      PropertyType = "CONDO"
	PropertyType_TOWNHOUSE  PropertyType = "TOWNHOUSE"
	PropertyType_LAND       PropertyType = "LAND"
	PropertyType_COMMERCIAL PropertyType = "COMMERCIAL"
)

// TransactionType indicates whether a listing is offered for sale or rent.
type TransactionType string

const (
	TransactionType_SALE TransactionType = "SALE"
	TransactionType_RENT TransactionType = "RENT"
)

// Location identifies where the property is, coarsest to finest.
type Location struct {
	Province string
	City     string
	District string
}

// EmbeddingDimensions is the fixed length of a listing embedding vector.
const EmbeddingDimensions = 1536

// Listing represents a property listing progressing through a visibility lifecycle.
//
// The embedding triple (Embedding, ContentFingerprint, EmbeddingVersion) is
// only ever written as a unit, through CompareAndSwapEmbedding. Status is only
// ever written through CompareAndSwapStatus.
type Listing struct {
	ID              uuid.UUID
	AgentID         uuid.UUID
	Status          ListingStatus
	Title           string
	Description     string
	PropertyType    PropertyType
	TransactionType TransactionType
	Location        Location
	Bedrooms        int
	Bathrooms       int
	Features        []string
	// Price is zero while unset; it must be strictly positive once published.
	Price float64
	// Embedding is nil until the first successful sync after publish.
	Embedding []float64
	// EmbeddingVersion increments on every embedding regeneration and pairs
	// 1:1 with the ContentFingerprint snapshot the vector was computed from.
	EmbeddingVersion   int64
	ContentFingerprint string
	// PublishedAt is set on the first transition into AVAILABLE and never cleared.
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the structural validity of a listing, independent of its
// lifecycle position. The publish gate is PublishViolations.
func (l Listing) Validate() error {
	if l.AgentID == uuid.Nil {
		return NewValidationErr("agent_id cannot be empty")
	}
	if l.Title == "" {
		return NewValidationErr("title cannot be empty")
	}
	if len(l.Title) > 200 {
		return NewValidationErr("title must be at most 200 characters")
	}
	if !l.PropertyType.Valid() {
		return NewValidationErr(fmt.Sprintf("unknown property type: %s", l.PropertyType))
	}
	if !l.TransactionType.Valid() {
		return NewValidationErr(fmt.Sprintf("unknown transaction type: %s", l.TransactionType))
	}
	if l.Bedrooms < 0 || l.Bathrooms < 0 {
		return NewValidationErr("bedroom and bathroom counts cannot be negative")
	}
	if l.Price < 0 {
		return NewValidationErr("price cannot be negative")
	}
	return nil
}

// PublishViolations evaluates the publish validation gate and returns every
// violated rule. An empty result means the listing may go AVAILABLE.
func (l Listing) PublishViolations() []string {
	var violations []string
	if len(l.Title) < 10 {
		violations = append(violations, "title must be at least 10 characters")
	}
	if len(l.Description) < 50 {
		violations = append(violations, "description must be at least 50 characters")
	}
	if l.Price <= 0 {
		violations = append(violations, "price must be set and greater than zero")
	}
	return violations
}

// Valid reports whether the property type is one of the known values.
func (pt PropertyType) Valid() bool {
	switch pt {
	case PropertyType_APARTMENT, PropertyType_HOUSE, PropertyType_CONDO,
		PropertyType_TOWNHOUSE, PropertyType_LAND, PropertyType_COMMERCIAL:
		return true
	}
	return false
}

// Valid reports whether the transaction type is one of the known values.
func (tt TransactionType) Valid() bool {
	return tt == TransactionType_SALE || tt == TransactionType_RENT
}

// ListingSummary is the retrieval-facing projection of a listing. It carries
// no raw vectors.
type ListingSummary struct {
	ID              uuid.UUID
	Title           string
	PropertyType    PropertyType
	TransactionType TransactionType
	Location        Location
	Price           float64
	Score           float64
	PublishedAt     time.Time
}

// SimilarityCandidate is one eligible candidate row for similarity scoring.
type SimilarityCandidate struct {
	ID          uuid.UUID
	Embedding   []float64
	PublishedAt time.Time
}

// ListListingsParams represents the parameters for listing queries.
type ListListingsParams struct {
	Status          *ListingStatus
	TransactionType *TransactionType
	PublishedAfter  *time.Time
	PublishedBefore *time.Time
}

// ListListingsOption mutates ListListingsParams.
type ListListingsOption func(*ListListingsParams)

// WithStatus filters listings by lifecycle status.
func WithStatus(status ListingStatus) ListListingsOption {
	return func(params *ListListingsParams) {
		params.Status = &status
	}
}

// WithTransactionType filters listings by transaction type.
func WithTransactionType(tt TransactionType) ListListingsOption {
	return func(params *ListListingsParams) {
		params.TransactionType = &tt
	}
}

// WithPublishedAfter keeps only listings first published at or after t.
func WithPublishedAfter(t time.Time) ListListingsOption {
	return func(params *ListListingsParams) {
		params.PublishedAfter = &t
	}
}

// WithPublishedBefore keeps only listings first published at or before t.
func WithPublishedBefore(t time.Time) ListListingsOption {
	return func(params *ListListingsParams) {
		params.PublishedBefore = &t
	}
}

// ListingRepository defines the interface for durable listing storage.
//
// Conditional writes are the concurrency primitive: both CAS methods return
// false, without error, when the stored value no longer matches the expected
// one. Callers decide what a lost race means.
type ListingRepository interface {
	// CreateListing persists a new listing.
	CreateListing(ctx context.Context, listing Listing) error

	// GetListing retrieves a listing by id. The boolean reports whether it exists.
	GetListing(ctx context.Context, id uuid.UUID) (Listing, bool, error)

	// UpdateContent writes the content fields, price, and updated_at of an
	// existing listing. It never touches status or the embedding triple.
	UpdateContent(ctx context.Context, listing Listing) error

	// ListListings retrieves listings with pagination, newest first.
	// The boolean reports whether more pages exist.
	ListListings(ctx context.Context, page, pageSize int, opts ...ListListingsOption) ([]Listing, bool, error)

	// CompareAndSwapStatus atomically moves the listing from expected to next.
	// When next is AVAILABLE, published_at is set if and only if it was unset.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next ListingStatus, now time.Time) (bool, error)

	// CompareAndSwapEmbedding atomically replaces the embedding triple, keyed
	// on the previously stored content fingerprint.
	CompareAndSwapEmbedding(ctx context.Context, id uuid.UUID, expectedFingerprint string, embedding []float64, newFingerprint string, newVersion int64) (bool, error)

	// ListAvailableWithEmbedding returns every similarity-eligible candidate:
	// status AVAILABLE and a non-absent embedding.
	ListAvailableWithEmbedding(ctx context.Context) ([]SimilarityCandidate, error)

	// ListForEmbeddingSync returns up to limit listings in vectorizable
	// statuses (AVAILABLE, RESERVED, UNLISTED) with an id greater than
	// afterID, in id order. Paging on id lets the sweep walk the whole
	// vectorizable set within one cycle, so no stale listing can hide
	// behind a stable prefix of fresh ones. afterID uuid.Nil starts a walk.
	ListForEmbeddingSync(ctx context.Context, afterID uuid.UUID, limit int) ([]Listing, error)
}
