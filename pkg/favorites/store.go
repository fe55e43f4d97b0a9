package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anatoly-dev/go-store-sync/pkg/auth"
	"github.com/anatoly-dev/go-store-sync/pkg/metrics"
	"github.com/anatoly-dev/go-store-sync/pkg/models"
	"go.uber.org/zap"
)

var ErrUnauthenticated = errors.New("not authenticated")

// Service is the favorites REST collaborator. Every call returns the
// authoritative list so the store can reconcile after each mutation.
type Service interface {
	GetFavorites(ctx context.Context) (*models.FavoritesPayload, error)
	ToggleFavorite(ctx context.Context, productID string) (*models.FavoritesPayload, error)
	AddToFavorites(ctx context.Context, productID string) (*models.FavoritesPayload, error)
	RemoveFromFavorites(ctx context.Context, productID string) (*models.FavoritesPayload, error)
	ClearAllFavorites(ctx context.Context) (*models.FavoritesPayload, error)
}

// Store is the single source of truth for the current user's favorited
// products. Mutations apply locally first and reconcile with the server
// response; on failure the optimistic change is rolled back and the
// error returned to the caller.
//
// Mutations are not reentrant-safe: two overlapping Toggle calls for the
// same product can race. Callers serialize interactions, e.g. by
// disabling the triggering control while a call is in flight.
type Store struct {
	service Service
	session auth.SessionProvider
	logger  *zap.Logger
	metrics *metrics.FavoritesMetrics

	mu      sync.RWMutex
	entries []models.FavoriteEntry
	count   int
	status  models.SyncStatus
	lastErr string
}

func NewStore(service Service, session auth.SessionProvider, logger *zap.Logger) *Store {
	return &Store{
		service: service,
		session: session,
		logger:  logger,
		status:  models.SyncStatusIdle,
	}
}

func (s *Store) SetMetrics(metrics *metrics.FavoritesMetrics) {
	s.metrics = metrics
}

// FetchAll refreshes local state from the server. It runs automatically
// on mount and auth changes, so failures are recorded in the store's
// error field instead of being returned. Without a session it resets to
// empty, which is a normal state, not an error.
func (s *Store) FetchAll(ctx context.Context) {
	if !s.session.IsAuthenticated() {
		s.mu.Lock()
		s.entries = nil
		s.count = 0
		s.status = models.SyncStatusIdle
		s.lastErr = ""
		s.mu.Unlock()
		return
	}

	s.setStatus(models.SyncStatusSyncing)

	payload, err := s.service.GetFavorites(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch favorites", zap.Error(err))

		if s.metrics != nil {
			s.metrics.SyncErrors.Inc()
		}

		// Previous entries stay as they are: stale but consistent.
		s.mu.Lock()
		s.status = models.SyncStatusError
		s.lastErr = err.Error()
		s.mu.Unlock()
		return
	}

	s.replaceAll(payload)
}

// IsFavorite reports current membership. Never errors: an absent state
// or a missing session simply reads as false.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ProductID == productID {
			return true
		}
	}
	return false
}

// Toggle flips membership for productID optimistically, then reconciles
// with the server's authoritative list. On failure the optimistic change
// is rolled back and the error returned.
func (s *Store) Toggle(ctx context.Context, productID string) error {
	if !s.session.IsAuthenticated() {
		return ErrUnauthenticated
	}

	snap := s.applyOptimistic("toggle", func() {
		if s.removeLocked(productID) {
			return
		}
		s.insertLocked(productID)
	})

	payload, err := s.service.ToggleFavorite(ctx, productID)
	if err != nil {
		s.rollback(ctx, snap)
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}

	s.replaceAll(payload)
	return nil
}

// Add favorites productID. No-op if it is already favorited.
func (s *Store) Add(ctx context.Context, productID string) error {
	if !s.session.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if s.IsFavorite(productID) {
		return nil
	}

	snap := s.applyOptimistic("add", func() {
		s.insertLocked(productID)
	})

	payload, err := s.service.AddToFavorites(ctx, productID)
	if err != nil {
		s.rollback(ctx, snap)
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	s.replaceAll(payload)
	return nil
}

// Remove unfavorites productID. No-op if it is not favorited.
func (s *Store) Remove(ctx context.Context, productID string) error {
	if !s.session.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if !s.IsFavorite(productID) {
		return nil
	}

	snap := s.applyOptimistic("remove", func() {
		s.removeLocked(productID)
	})

	payload, err := s.service.RemoveFromFavorites(ctx, productID)
	if err != nil {
		s.rollback(ctx, snap)
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	s.replaceAll(payload)
	return nil
}

// ClearAll empties the set immediately, then tells the server.
func (s *Store) ClearAll(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return ErrUnauthenticated
	}

	snap := s.applyOptimistic("clear", func() {
		s.entries = nil
		s.count = 0
	})

	payload, err := s.service.ClearAllFavorites(ctx)
	if err != nil {
		s.rollback(ctx, snap)
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	s.replaceAll(payload)
	return nil
}

// Entries returns a copy of the current set in insertion order.
func (s *Store) Entries() []models.FavoriteEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.FavoriteEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Store) Status() models.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// snapshot captures both entries and the server-reported count: the two
// are separate envelope fields and may legitimately disagree, so rollback
// must restore each as it was.
type snapshot struct {
	entries []models.FavoriteEntry
	count   int
}

// applyOptimistic snapshots the current state, applies mutate under the
// lock and marks the store as syncing. The snapshot is what rollback
// restores if the server call fails.
func (s *Store) applyOptimistic(operation string, mutate func()) snapshot {
	s.mu.Lock()

	snap := snapshot{
		entries: make([]models.FavoriteEntry, len(s.entries)),
		count:   s.count,
	}
	copy(snap.entries, s.entries)

	mutate()
	s.status = models.SyncStatusSyncing
	s.lastErr = ""

	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.OptimisticMutations.WithLabelValues(operation).Inc()
	}

	return snap
}

// insertLocked appends a provisional entry. The caller holds s.mu.
func (s *Store) insertLocked(productID string) {
	s.entries = append(s.entries, models.FavoriteEntry{
		ProductID: productID,
		Status:    models.EntryStatusProvisional,
	})
	s.count++
}

// removeLocked deletes productID preserving order, reporting whether it
// was present. The caller holds s.mu.
func (s *Store) removeLocked(productID string) bool {
	for i, entry := range s.entries {
		if entry.ProductID == productID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.count--
			return true
		}
	}
	return false
}

// replaceAll overwrites local state wholesale with the server response.
// Provisional entries do not survive reconciliation.
func (s *Store) replaceAll(payload *models.FavoritesPayload) {
	entries := make([]models.FavoriteEntry, len(payload.Favorites))
	copy(entries, payload.Favorites)
	for i := range entries {
		entries[i].Status = models.EntryStatusConfirmed
	}

	s.mu.Lock()
	s.entries = entries
	s.count = payload.Count
	s.status = models.SyncStatusIdle
	s.lastErr = ""
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SyncsTotal.Inc()
		s.metrics.FavoritesCount.Set(float64(payload.Count))
	}
}

// rollback restores the pre-mutation snapshot, then refreshes from the
// server. The restore happens first so membership is correct even when
// the refresh itself fails, e.g. offline.
func (s *Store) rollback(ctx context.Context, snap snapshot) {
	s.mu.Lock()
	s.entries = snap.entries
	s.count = snap.count
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Rollbacks.Inc()
	}

	s.FetchAll(ctx)
}

func (s *Store) setStatus(status models.SyncStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}
