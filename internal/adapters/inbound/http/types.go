package http

import (
	"time"

	"github.com/google/uuid"
)

// ErrorCode classifies an API error response.
type ErrorCode string

const (
	ErrorCode_BadRequest          ErrorCode = "BAD_REQUEST"
	ErrorCode_NotFound            ErrorCode = "NOT_FOUND"
	ErrorCode_Forbidden           ErrorCode = "FORBIDDEN"
	ErrorCode_Conflict            ErrorCode = "CONFLICT"
	ErrorCode_IncompleteListing   ErrorCode = "INCOMPLETE_LISTING"
	ErrorCode_ProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrorCode_InternalError       ErrorCode = "INTERNAL_ERROR"
)

// ErrorResp is the error envelope returned by every endpoint.
type ErrorResp struct {
	Error Error `json:"error"`
}

// Error carries the error code, message, and any per-rule details.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

// LocationResp represents a listing location on the wire.
type LocationResp struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
}

// ListingResp represents a listing on the wire. Raw vectors are never exposed.
type ListingResp struct {
	ID              uuid.UUID    `json:"id"`
	AgentID         uuid.UUID    `json:"agent_id"`
	Status          string       `json:"status"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	PropertyType    string       `json:"property_type"`
	TransactionType string       `json:"transaction_type"`
	Location        LocationResp `json:"location"`
	Bedrooms        int          `json:"bedrooms"`
	Bathrooms       int          `json:"bathrooms"`
	Features        []string     `json:"features"`
	Price           float64      `json:"price"`
	PublishedAt     *time.Time   `json:"published_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CreateListingReq is the request body for creating a listing.
type CreateListingReq struct {
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	PropertyType    string       `json:"property_type"`
	TransactionType string       `json:"transaction_type"`
	Location        LocationResp `json:"location"`
	Bedrooms        int          `json:"bedrooms"`
	Bathrooms       int          `json:"bathrooms"`
	Features        []string     `json:"features"`
	Price           float64      `json:"price"`
}

// UpdateListingReq is the request body for a content update. Absent fields are
// left unchanged.
type UpdateListingReq struct {
	Title           *string       `json:"title,omitempty"`
	Description     *string       `json:"description,omitempty"`
	PropertyType    *string       `json:"property_type,omitempty"`
	TransactionType *string       `json:"transaction_type,omitempty"`
	Location        *LocationResp `json:"location,omitempty"`
	Bedrooms        *int          `json:"bedrooms,omitempty"`
	Bathrooms       *int          `json:"bathrooms,omitempty"`
	Features        *[]string     `json:"features,omitempty"`
	Price           *float64      `json:"price,omitempty"`
}

// ListListingsResp is the paginated listings response.
type ListListingsResp struct {
	Items        []ListingResp `json:"items"`
	Page         int           `json:"page"`
	NextPage     *int          `json:"next_page,omitempty"`
	PreviousPage *int          `json:"previous_page,omitempty"`
}

// SimilarListingResp is one similarity result.
type SimilarListingResp struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	PropertyType    string       `json:"property_type"`
	TransactionType string       `json:"transaction_type"`
	Location        LocationResp `json:"location"`
	Price           float64      `json:"price"`
	Score           float64      `json:"score"`
	PublishedAt     time.Time    `json:"published_at"`
}

// SimilarListingsResp is the similarity retrieval response.
type SimilarListingsResp struct {
	Items []SimilarListingResp `json:"items"`
}
