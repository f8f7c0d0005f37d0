package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/telemetry"
)

var (
	listingFields = []string{
		"id",
		"agent_id",
		"status",
		"title",
		"description",
		"property_type",
		"transaction_type",
		"province",
		"city",
		"district",
		"bedrooms",
		"bathrooms",
		"features",
		"price",
		"embedding",
		"embedding_version",
		"content_fingerprint",
		"published_at",
		"created_at",
		"updated_at",
	}
)

// ListingRepository implements the domain.ListingRepository interface using
// PostgreSQL as the storage backend. Conditional writes rely on RowsAffected
// of an UPDATE keyed on the expected prior value.
type ListingRepository struct {
	sb squirrel.StatementBuilderType
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(br squirrel.BaseRunner) ListingRepository {
	return ListingRepository{
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(br),
	}
}

// CreateListing creates a new listing.
func (lr ListingRepository) CreateListing(ctx context.Context, listing domain.Listing) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	features, err := json.Marshal(canonicalSlice(listing.Features))
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	_, err = lr.sb.
		Insert("listings").
		Columns(
			listingFields...,
		).
		Values(
			listing.ID,
			listing.AgentID,
			listing.Status,
			listing.Title,
			listing.Description,
			listing.PropertyType,
			listing.TransactionType,
			listing.Location.Province,
			listing.Location.City,
			listing.Location.District,
			listing.Bedrooms,
			listing.Bathrooms,
			features,
			listing.Price,
			vectorParam(listing.Embedding),
			listing.EmbeddingVersion,
			listing.ContentFingerprint,
			listing.PublishedAt,
			listing.CreatedAt,
			listing.UpdatedAt,
		).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}

	return nil
}

// GetListing retrieves a listing by its ID.
func (lr ListingRepository) GetListing(ctx context.Context, id uuid.UUID) (domain.Listing, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	row := lr.sb.
		Select(
			listingFields...,
		).
		From("listings").
		Where(squirrel.Eq{"id": id}).
		QueryRowContext(spanCtx)

	listing, err := scanListing(row)
	if telemetry.RecordErrorAndStatus(span, err) {
		if err == sql.ErrNoRows {
			return domain.Listing{}, false, nil
		}
		return domain.Listing{}, false, err
	}

	return listing, true, nil
}

// UpdateContent writes the content fields, price, and updated_at of a listing.
// Status and the embedding triple have their own conditional writes.
func (lr ListingRepository) UpdateContent(ctx context.Context, listing domain.Listing) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	features, err := json.Marshal(canonicalSlice(listing.Features))
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	_, err = lr.sb.
		Update("listings").
		Set("title", listing.Title).
		Set("description", listing.Description).
		Set("property_type", listing.PropertyType).
		Set("transaction_type", listing.TransactionType).
		Set("province", listing.Location.Province).
		Set("city", listing.Location.City).
		Set("district", listing.Location.District).
		Set("bedrooms", listing.Bedrooms).
		Set("bathrooms", listing.Bathrooms).
		Set("features", features).
		Set("price", listing.Price).
		Set("updated_at", listing.UpdatedAt).
		Where(squirrel.Eq{"id": listing.ID}).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// ListListings lists listings with pagination and optional filters, newest first.
func (lr ListingRepository) ListListings(ctx context.Context, page int, pageSize int, opts ...domain.ListListingsOption) ([]domain.Listing, bool, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.Int("page", page),
		attribute.Int("pageSize", pageSize),
	))
	defer span.End()

	if pageSize <= 0 {
		return nil, false, domain.NewValidationErr("page_size must be greater than 0")
	}
	if page <= 0 {
		return nil, false, domain.NewValidationErr("page must be greater than 0")
	}

	qry := lr.sb.
		Select(
			listingFields...,
		).From("listings").
		Limit(uint64(pageSize + 1)). // fetch one extra to determine if there's more
		Offset(uint64((page - 1) * pageSize))

	params := &domain.ListListingsParams{}
	for _, opt := range opts {
		opt(params)
	}

	if params.Status != nil {
		qry = qry.Where(squirrel.Eq{"status": *params.Status})
	}
	if params.TransactionType != nil {
		qry = qry.Where(squirrel.Eq{"transaction_type": *params.TransactionType})
	}
	if params.PublishedAfter != nil {
		qry = qry.Where(squirrel.GtOrEq{"published_at": *params.PublishedAfter})
	}
	if params.PublishedBefore != nil {
		qry = qry.Where(squirrel.LtOrEq{"published_at": *params.PublishedBefore})
	}
	qry = qry.OrderBy("created_at DESC")

	rows, err := qry.QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, false, err
	}
	defer rows.Close() //nolint:errcheck

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, false, err
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, false, err
	}

	if len(listings) > pageSize {
		listings = listings[:pageSize]
		return listings, true, nil
	}
	return listings, false, nil
}

// CompareAndSwapStatus atomically moves the listing from expected to next.
// The WHERE clause carries the expected status, so a concurrent transition
// makes RowsAffected zero instead of overwriting it.
func (lr ListingRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next domain.ListingStatus, now time.Time) (bool, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.String("expected", string(expected)),
		attribute.String("next", string(next)),
	))
	defer span.End()

	qry := lr.sb.
		Update("listings").
		Set("status", next).
		Set("updated_at", now)

	if next == domain.ListingStatus_AVAILABLE {
		// published_at is set on the first publish only.
		qry = qry.Set("published_at", squirrel.Expr("COALESCE(published_at, ?)", now))
	}

	res, err := qry.
		Where(squirrel.Eq{"id": id, "status": expected}).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return false, err
	}

	affected, err := res.RowsAffected()
	if telemetry.RecordErrorAndStatus(span, err) {
		return false, err
	}

	return affected == 1, nil
}

// CompareAndSwapEmbedding atomically replaces the embedding triple, keyed on
// the previously stored content fingerprint.
func (lr ListingRepository) CompareAndSwapEmbedding(ctx context.Context, id uuid.UUID, expectedFingerprint string, embedding []float64, newFingerprint string, newVersion int64) (bool, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.Int64("newVersion", newVersion),
	))
	defer span.End()

	res, err := lr.sb.
		Update("listings").
		Set("embedding", vectorParam(embedding)).
		Set("content_fingerprint", newFingerprint).
		Set("embedding_version", newVersion).
		Where(squirrel.Eq{"id": id, "content_fingerprint": expectedFingerprint}).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return false, err
	}

	affected, err := res.RowsAffected()
	if telemetry.RecordErrorAndStatus(span, err) {
		return false, err
	}

	return affected == 1, nil
}

// ListAvailableWithEmbedding returns every similarity-eligible candidate.
func (lr ListingRepository) ListAvailableWithEmbedding(ctx context.Context) ([]domain.SimilarityCandidate, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	rows, err := lr.sb.
		Select("id", "embedding", "published_at").
		From("listings").
		Where(squirrel.Eq{"status": domain.ListingStatus_AVAILABLE}).
		Where("embedding IS NOT NULL").
		QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var candidates []domain.SimilarityCandidate
	for rows.Next() {
		var (
			candidate   domain.SimilarityCandidate
			vec         pgvector.Vector
			publishedAt sql.NullTime
		)
		err := rows.Scan(&candidate.ID, &vec, &publishedAt)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		candidate.Embedding = toFloat64(vec)
		if publishedAt.Valid {
			candidate.PublishedAt = publishedAt.Time
		}
		candidates = append(candidates, candidate)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}

	return candidates, nil
}

// ListForEmbeddingSync returns up to limit listings in vectorizable statuses
// with an id greater than afterID, in id order.
func (lr ListingRepository) ListForEmbeddingSync(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Listing, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.String("after_id", afterID.String()),
		attribute.Int("limit", limit),
	))
	defer span.End()

	rows, err := lr.sb.
		Select(
			listingFields...,
		).
		From("listings").
		Where(squirrel.Eq{"status": []domain.ListingStatus{
			domain.ListingStatus_AVAILABLE,
			domain.ListingStatus_RESERVED,
			domain.ListingStatus_UNLISTED,
		}}).
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}

	return listings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var (
		listing      domain.Listing
		featuresJSON []byte
		vec          *pgvector.Vector
		publishedAt  sql.NullTime
	)

	err := row.Scan(
		&listing.ID,
		&listing.AgentID,
		&listing.Status,
		&listing.Title,
		&listing.Description,
		&listing.PropertyType,
		&listing.TransactionType,
		&listing.Location.Province,
		&listing.Location.City,
		&listing.Location.District,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&featuresJSON,
		&listing.Price,
		&vec,
		&listing.EmbeddingVersion,
		&listing.ContentFingerprint,
		&publishedAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}

	if len(featuresJSON) > 0 {
		if err := json.Unmarshal(featuresJSON, &listing.Features); err != nil {
			return domain.Listing{}, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}
	if vec != nil {
		listing.Embedding = toFloat64(*vec)
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		listing.PublishedAt = &t
	}

	return listing, nil
}

// InitListingRepository is a Symbiont initializer for ListingRepository.
type InitListingRepository struct {
	DB *sql.DB `resolve:""`
}

// Initialize registers the ListingRepository in the dependency container.
func (lr InitListingRepository) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.ListingRepository](NewListingRepository(lr.DB))
	return ctx, nil
}

// vectorParam converts an embedding to its column value, preserving NULL for
// absent embeddings.
func vectorParam(input []float64) any {
	if input == nil {
		return nil
	}
	return pgvector.NewVector(toFloat32Truncated(input))
}

func toFloat32Truncated(input []float64) []float32 {
	f32 := make([]float32, len(input))
	for i, v := range input {
		f32[i] = float32(v)
	}
	if len(f32) > domain.EmbeddingDimensions {
		f32 = f32[:domain.EmbeddingDimensions]
	}
	return f32
}

func toFloat64(vec pgvector.Vector) []float64 {
	f32 := vec.Slice()
	f64 := make([]float64, len(f32))
	for i, v := range f32 {
		f64[i] = float64(v)
	}
	return f64
}

// canonicalSlice keeps the stored features column a JSON array, never null.
func canonicalSlice(features []string) []string {
	if features == nil {
		return []string{}
	}
	return features
}
