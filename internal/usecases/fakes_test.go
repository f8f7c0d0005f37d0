package usecases

import (
	"bytes"
	"context"
	"io"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
)

// fakeListingRepo is an in-memory ListingRepository with injectable failures.
type fakeListingRepo struct {
	listings map[uuid.UUID]domain.Listing

	err                error
	forceStatusCASMiss bool
	forceEmbedCASMiss  bool

	embeddingWrites int
	contentWrites   int
}

func newFakeListingRepo(listings ...domain.Listing) *fakeListingRepo {
	repo := &fakeListingRepo{listings: map[uuid.UUID]domain.Listing{}}
	for _, l := range listings {
		repo.listings[l.ID] = l
	}
	return repo
}

func (f *fakeListingRepo) CreateListing(_ context.Context, listing domain.Listing) error {
	if f.err != nil {
		return f.err
	}
	f.listings[listing.ID] = listing
	return nil
}

func (f *fakeListingRepo) GetListing(_ context.Context, id uuid.UUID) (domain.Listing, bool, error) {
	if f.err != nil {
		return domain.Listing{}, false, f.err
	}
	listing, found := f.listings[id]
	return listing, found, nil
}

func (f *fakeListingRepo) UpdateContent(_ context.Context, listing domain.Listing) error {
	if f.err != nil {
		return f.err
	}
	stored := f.listings[listing.ID]
	stored.Title = listing.Title
	stored.Description = listing.Description
	stored.PropertyType = listing.PropertyType
	stored.TransactionType = listing.TransactionType
	stored.Location = listing.Location
	stored.Bedrooms = listing.Bedrooms
	stored.Bathrooms = listing.Bathrooms
	stored.Features = listing.Features
	stored.Price = listing.Price
	stored.UpdatedAt = listing.UpdatedAt
	f.listings[listing.ID] = stored
	f.contentWrites++
	return nil
}

func (f *fakeListingRepo) ListListings(_ context.Context, page, pageSize int, opts ...domain.ListListingsOption) ([]domain.Listing, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	var params domain.ListListingsParams
	for _, opt := range opts {
		opt(&params)
	}

	var all []domain.Listing
	for _, l := range f.listings {
		if params.Status != nil && l.Status != *params.Status {
			continue
		}
		if params.TransactionType != nil && l.TransactionType != *params.TransactionType {
			continue
		}
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, false, nil
	}
	end := offset + pageSize
	hasMore := end < len(all)
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], hasMore, nil
}

func (f *fakeListingRepo) CompareAndSwapStatus(_ context.Context, id uuid.UUID, expected, next domain.ListingStatus, now time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.forceStatusCASMiss {
		return false, nil
	}
	stored, found := f.listings[id]
	if !found || stored.Status != expected {
		return false, nil
	}
	stored.Status = next
	stored.UpdatedAt = now
	if next == domain.ListingStatus_AVAILABLE && stored.PublishedAt == nil {
		publishedAt := now
		stored.PublishedAt = &publishedAt
	}
	f.listings[id] = stored
	return true, nil
}

func (f *fakeListingRepo) CompareAndSwapEmbedding(_ context.Context, id uuid.UUID, expectedFingerprint string, embedding []float64, newFingerprint string, newVersion int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.forceEmbedCASMiss {
		return false, nil
	}
	stored, found := f.listings[id]
	if !found || stored.ContentFingerprint != expectedFingerprint {
		return false, nil
	}
	stored.Embedding = embedding
	stored.ContentFingerprint = newFingerprint
	stored.EmbeddingVersion = newVersion
	f.listings[id] = stored
	f.embeddingWrites++
	return true, nil
}

func (f *fakeListingRepo) ListAvailableWithEmbedding(_ context.Context) ([]domain.SimilarityCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var candidates []domain.SimilarityCandidate
	for _, l := range f.listings {
		if l.Status != domain.ListingStatus_AVAILABLE || l.Embedding == nil {
			continue
		}
		candidate := domain.SimilarityCandidate{ID: l.ID, Embedding: l.Embedding}
		if l.PublishedAt != nil {
			candidate.PublishedAt = *l.PublishedAt
		}
		candidates = append(candidates, candidate)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID.String() < candidates[j].ID.String() })
	return candidates, nil
}

func (f *fakeListingRepo) ListForEmbeddingSync(_ context.Context, afterID uuid.UUID, limit int) ([]domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	var eligible []domain.Listing
	for _, l := range f.listings {
		if !domain.VectorizableStatus(l.Status) {
			continue
		}
		if bytes.Compare(l.ID[:], afterID[:]) <= 0 {
			continue
		}
		eligible = append(eligible, l)
	}
	sort.Slice(eligible, func(i, j int) bool {
		return bytes.Compare(eligible[i].ID[:], eligible[j].ID[:]) < 0
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

// fakeOutboxRepo records lifecycle events.
type fakeOutboxRepo struct {
	recorded []domain.ListingEvent
	pending  []domain.OutboxEvent
	updates  []domain.OutboxStatus
	deleted  []uuid.UUID
	err      error
}

func (f *fakeOutboxRepo) RecordEvent(_ context.Context, event domain.ListingEvent) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, event)
	return nil
}

func (f *fakeOutboxRepo) FetchPendingEvents(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) UpdateEvent(_ context.Context, eventID uuid.UUID, status domain.OutboxStatus, retryCount int, lastError string) error {
	f.updates = append(f.updates, status)
	return nil
}

func (f *fakeOutboxRepo) DeleteEvent(_ context.Context, eventID uuid.UUID) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

// fakeUnitOfWork hands out the fake repositories and runs transaction bodies
// inline.
type fakeUnitOfWork struct {
	listing *fakeListingRepo
	outbox  *fakeOutboxRepo
	err     error
}

func newFakeUnitOfWork(listings ...domain.Listing) *fakeUnitOfWork {
	return &fakeUnitOfWork{
		listing: newFakeListingRepo(listings...),
		outbox:  &fakeOutboxRepo{},
	}
}

func (f *fakeUnitOfWork) Listing() domain.ListingRepository { return f.listing }
func (f *fakeUnitOfWork) Outbox() domain.OutboxRepository   { return f.outbox }

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(uow domain.UnitOfWork) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(f)
}

// fixedClock returns a constant time.
type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

// stubEncoder returns a canned vector or error.
type stubEncoder struct {
	vector domain.EmbeddingVector
	err    error
	calls  int
}

func (s *stubEncoder) VectorizeListing(ctx context.Context, model string, listing domain.Listing) (domain.EmbeddingVector, error) {
	s.calls++
	if s.err != nil {
		return domain.EmbeddingVector{}, s.err
	}
	return s.vector, nil
}

// stubSync records which listings were handed to the embedding sync.
type stubSync struct {
	ids []uuid.UUID
	err error
}

func (s *stubSync) Execute(_ context.Context, listingID uuid.UUID) error {
	s.ids = append(s.ids, listingID)
	return s.err
}

// stubPublisher fails a configurable number of times before succeeding.
type stubPublisher struct {
	published []domain.OutboxEvent
	err       error
}

func (s *stubPublisher) PublishEvent(_ context.Context, event domain.OutboxEvent) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func fixedVector(fill float64) []float64 {
	vec := make([]float64, domain.EmbeddingDimensions)
	for i := range vec {
		vec[i] = fill
	}
	return vec
}
