package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
)

// Store is an in-memory implementation of the listing and outbox repositories.
// It backs local runs and tests where no database is available, and mirrors
// the conditional-write semantics of the PostgreSQL adapter.
type Store struct {
	mu       sync.RWMutex
	execMu   sync.Mutex
	listings map[uuid.UUID]domain.Listing
	outbox   map[uuid.UUID]outboxRecord
}

type outboxRecord struct {
	event  domain.OutboxEvent
	status domain.OutboxStatus
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		listings: make(map[uuid.UUID]domain.Listing),
		outbox:   make(map[uuid.UUID]outboxRecord),
	}
}

// CreateListing persists a new listing.
func (s *Store) CreateListing(_ context.Context, listing domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = cloneListing(listing)
	return nil
}

// GetListing retrieves a listing by id.
func (s *Store) GetListing(_ context.Context, id uuid.UUID) (domain.Listing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	if !ok {
		return domain.Listing{}, false, nil
	}
	return cloneListing(listing), true, nil
}

// UpdateContent writes the content fields, price, and updated_at of an
// existing listing. Status and the embedding triple are preserved.
func (s *Store) UpdateContent(_ context.Context, listing domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.listings[listing.ID]
	if !ok {
		return nil
	}
	stored.Title = listing.Title
	stored.Description = listing.Description
	stored.PropertyType = listing.PropertyType
	stored.TransactionType = listing.TransactionType
	stored.Location = listing.Location
	stored.Bedrooms = listing.Bedrooms
	stored.Bathrooms = listing.Bathrooms
	stored.Features = append([]string(nil), listing.Features...)
	stored.Price = listing.Price
	stored.UpdatedAt = listing.UpdatedAt
	s.listings[listing.ID] = stored
	return nil
}

// ListListings retrieves listings with pagination, newest first.
func (s *Store) ListListings(_ context.Context, page, pageSize int, opts ...domain.ListListingsOption) ([]domain.Listing, bool, error) {
	if pageSize <= 0 {
		return nil, false, domain.NewValidationErr("page_size must be greater than 0")
	}
	if page <= 0 {
		return nil, false, domain.NewValidationErr("page must be greater than 0")
	}

	params := &domain.ListListingsParams{}
	for _, opt := range opts {
		opt(params)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Listing
	for _, listing := range s.listings {
		if params.Status != nil && listing.Status != *params.Status {
			continue
		}
		if params.TransactionType != nil && listing.TransactionType != *params.TransactionType {
			continue
		}
		if params.PublishedAfter != nil && (listing.PublishedAt == nil || listing.PublishedAt.Before(*params.PublishedAfter)) {
			continue
		}
		if params.PublishedBefore != nil && (listing.PublishedAt == nil || listing.PublishedAt.After(*params.PublishedBefore)) {
			continue
		}
		matched = append(matched, cloneListing(listing))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := (page - 1) * pageSize
	if offset >= len(matched) {
		return nil, false, nil
	}
	matched = matched[offset:]
	if len(matched) > pageSize {
		return matched[:pageSize], true, nil
	}
	return matched, false, nil
}

// CompareAndSwapStatus atomically moves the listing from expected to next.
func (s *Store) CompareAndSwapStatus(_ context.Context, id uuid.UUID, expected, next domain.ListingStatus, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.listings[id]
	if !ok || stored.Status != expected {
		return false, nil
	}
	stored.Status = next
	stored.UpdatedAt = now
	if next == domain.ListingStatus_AVAILABLE && stored.PublishedAt == nil {
		t := now
		stored.PublishedAt = &t
	}
	s.listings[id] = stored
	return true, nil
}

// CompareAndSwapEmbedding atomically replaces the embedding triple, keyed on
// the previously stored content fingerprint.
func (s *Store) CompareAndSwapEmbedding(_ context.Context, id uuid.UUID, expectedFingerprint string, embedding []float64, newFingerprint string, newVersion int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.listings[id]
	if !ok || stored.ContentFingerprint != expectedFingerprint {
		return false, nil
	}
	stored.Embedding = append([]float64(nil), embedding...)
	stored.ContentFingerprint = newFingerprint
	stored.EmbeddingVersion = newVersion
	s.listings[id] = stored
	return true, nil
}

// ListAvailableWithEmbedding returns every similarity-eligible candidate.
func (s *Store) ListAvailableWithEmbedding(_ context.Context) ([]domain.SimilarityCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []domain.SimilarityCandidate
	for _, listing := range s.listings {
		if listing.Status != domain.ListingStatus_AVAILABLE || listing.Embedding == nil {
			continue
		}
		candidate := domain.SimilarityCandidate{
			ID:        listing.ID,
			Embedding: append([]float64(nil), listing.Embedding...),
		}
		if listing.PublishedAt != nil {
			candidate.PublishedAt = *listing.PublishedAt
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// ListForEmbeddingSync returns up to limit listings in vectorizable statuses
// with an id greater than afterID, in id order.
func (s *Store) ListForEmbeddingSync(_ context.Context, afterID uuid.UUID, limit int) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listings []domain.Listing
	for id, listing := range s.listings {
		if !domain.VectorizableStatus(listing.Status) {
			continue
		}
		if bytes.Compare(id[:], afterID[:]) <= 0 {
			continue
		}
		listings = append(listings, cloneListing(listing))
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return bytes.Compare(listings[i].ID[:], listings[j].ID[:]) < 0
	})
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

// RecordEvent stores a lifecycle event in the outbox.
func (s *Store) RecordEvent(_ context.Context, event domain.ListingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.outbox[id] = outboxRecord{
		event: domain.OutboxEvent{
			ID:         id,
			EntityType: "Listing",
			EntityID:   event.ListingID,
			Topic:      "Listing",
			EventType:  string(event.Type),
			RetryCount: 0,
			MaxRetries: 5,
			CreatedAt:  event.CreatedAt,
		},
		status: domain.OutboxStatus_Pending,
	}
	return nil
}

// FetchPendingEvents retrieves a batch of pending outbox events, oldest first.
func (s *Store) FetchPendingEvents(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []domain.OutboxEvent
	for _, record := range s.outbox {
		if record.status != domain.OutboxStatus_Pending {
			continue
		}
		events = append(events, record.event)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// UpdateEvent updates the status, retry count, and last error of an outbox event.
func (s *Store) UpdateEvent(_ context.Context, eventID uuid.UUID, status domain.OutboxStatus, retryCount int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[eventID]
	if !ok {
		return nil
	}
	record.status = status
	record.event.RetryCount = retryCount
	record.event.LastError = &lastError
	s.outbox[eventID] = record
	return nil
}

// DeleteEvent deletes a relayed event from the outbox.
func (s *Store) DeleteEvent(_ context.Context, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outbox, eventID)
	return nil
}

func cloneListing(listing domain.Listing) domain.Listing {
	clone := listing
	clone.Features = append([]string(nil), listing.Features...)
	clone.Embedding = append([]float64(nil), listing.Embedding...)
	if listing.PublishedAt != nil {
		t := *listing.PublishedAt
		clone.PublishedAt = &t
	}
	return clone
}

// snapshot copies the full store state under the read lock.
func (s *Store) snapshot() (map[uuid.UUID]domain.Listing, map[uuid.UUID]outboxRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listings := make(map[uuid.UUID]domain.Listing, len(s.listings))
	for id, listing := range s.listings {
		listings[id] = cloneListing(listing)
	}
	outbox := make(map[uuid.UUID]outboxRecord, len(s.outbox))
	for id, record := range s.outbox {
		outbox[id] = record
	}
	return listings, outbox
}

// restore replaces the store state with a previously taken snapshot.
func (s *Store) restore(listings map[uuid.UUID]domain.Listing, outbox map[uuid.UUID]outboxRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = listings
	s.outbox = outbox
}

// UnitOfWork is a unit of work over the in-memory store.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit of work bound to the given store.
func NewUnitOfWork(store *Store) UnitOfWork {
	return UnitOfWork{store: store}
}

// Listing returns the listing repository.
func (u UnitOfWork) Listing() domain.ListingRepository {
	return u.store
}

// Outbox returns the outbox repository.
func (u UnitOfWork) Outbox() domain.OutboxRepository {
	return u.store
}

// Execute runs fn with transaction semantics: a failing fn leaves the store
// exactly as it was before the call. Units of work are serialized against
// each other so a rollback cannot discard a concurrent unit's writes.
func (u UnitOfWork) Execute(_ context.Context, fn func(uow domain.UnitOfWork) error) error {
	u.store.execMu.Lock()
	defer u.store.execMu.Unlock()

	listings, outbox := u.store.snapshot()
	if err := fn(u); err != nil {
		u.store.restore(listings, outbox)
		return err
	}
	return nil
}

// InitStore is a Symbiont initializer that registers the in-memory store as
// the storage backend.
type InitStore struct{}

// Initialize registers the store repositories and unit of work.
func (is InitStore) Initialize(ctx context.Context) (context.Context, error) {
	store := NewStore()
	depend.Register[domain.ListingRepository](store)
	depend.Register[domain.OutboxRepository](store)
	depend.Register[domain.UnitOfWork](NewUnitOfWork(store))
	return ctx, nil
}
