package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/anatoly-dev/go-store-sync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	authenticated bool
	token         string
	cleared       bool
	activity      int
}

func (s *fakeSession) IsAuthenticated() bool { return s.authenticated }
func (s *fakeSession) Token() string         { return s.token }
func (s *fakeSession) UpdateActivity()       { s.activity++ }
func (s *fakeSession) Clear()                { s.cleared = true }

type fakeService struct {
	getFn    func(ctx context.Context) (*models.FavoritesPayload, error)
	toggleFn func(ctx context.Context, productID string) (*models.FavoritesPayload, error)
	addFn    func(ctx context.Context, productID string) (*models.FavoritesPayload, error)
	removeFn func(ctx context.Context, productID string) (*models.FavoritesPayload, error)
	clearFn  func(ctx context.Context) (*models.FavoritesPayload, error)

	addCalls    int
	removeCalls int
}

func (s *fakeService) GetFavorites(ctx context.Context) (*models.FavoritesPayload, error) {
	if s.getFn == nil {
		return payload(), nil
	}
	return s.getFn(ctx)
}

func (s *fakeService) ToggleFavorite(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
	return s.toggleFn(ctx, productID)
}

func (s *fakeService) AddToFavorites(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
	s.addCalls++
	return s.addFn(ctx, productID)
}

func (s *fakeService) RemoveFromFavorites(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
	s.removeCalls++
	return s.removeFn(ctx, productID)
}

func (s *fakeService) ClearAllFavorites(ctx context.Context) (*models.FavoritesPayload, error) {
	return s.clearFn(ctx)
}

func payload(productIDs ...string) *models.FavoritesPayload {
	entries := make([]models.FavoriteEntry, 0, len(productIDs))
	for _, id := range productIDs {
		entries = append(entries, models.FavoriteEntry{ProductID: id})
	}
	return &models.FavoritesPayload{Favorites: entries, Count: len(entries)}
}

func newTestStore(service Service) (*Store, *fakeSession) {
	session := &fakeSession{authenticated: true, token: "token"}
	return NewStore(service, session, zap.NewNop()), session
}

func TestToggleIsOptimisticBeforeServerResponds(t *testing.T) {
	service := &fakeService{}
	store, _ := newTestStore(service)

	service.toggleFn = func(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
		// The local mutation must be visible while the server call is
		// still in flight.
		assert.True(t, store.IsFavorite("p1"))
		assert.Equal(t, 1, store.Count())
		return payload("p1"), nil
	}

	err := store.Toggle(context.Background(), "p1")
	require.NoError(t, err)

	assert.True(t, store.IsFavorite("p1"))
	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryStatusConfirmed, entries[0].Status)
	assert.Equal(t, models.SyncStatusIdle, store.Status())
}

func TestToggleRollsBackWhenOffline(t *testing.T) {
	service := &fakeService{
		getFn: func(ctx context.Context) (*models.FavoritesPayload, error) {
			return nil, errors.New("network unreachable")
		},
	}
	store, _ := newTestStore(service)

	service.toggleFn = func(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
		return nil, errors.New("network unreachable")
	}

	err := store.Toggle(context.Background(), "p1")
	require.Error(t, err)

	assert.False(t, store.IsFavorite("p1"))
	assert.Equal(t, 0, store.Count())
	assert.NotEmpty(t, store.LastError())
	assert.Equal(t, models.SyncStatusError, store.Status())
}

func TestToggleRollbackRestoresPreviousMembership(t *testing.T) {
	service := &fakeService{
		getFn: func(ctx context.Context) (*models.FavoritesPayload, error) {
			return payload("p1"), nil
		},
	}
	store, _ := newTestStore(service)
	store.FetchAll(context.Background())
	require.True(t, store.IsFavorite("p1"))

	service.toggleFn = func(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
		return nil, errors.New("service unavailable")
	}

	err := store.Toggle(context.Background(), "p1")
	require.Error(t, err)

	// Pre-toggle membership holds after rollback.
	assert.True(t, store.IsFavorite("p1"))
	assert.Equal(t, 1, store.Count())
}

func TestRollbackRestoresServerReportedCount(t *testing.T) {
	// The server count is its own envelope field and can disagree with
	// the list length (e.g. a truncated list).
	serverState := &models.FavoritesPayload{
		Favorites: []models.FavoriteEntry{{ProductID: "p1"}},
		Count:     3,
	}
	calls := 0
	service := &fakeService{}
	service.getFn = func(ctx context.Context) (*models.FavoritesPayload, error) {
		calls++
		if calls == 1 {
			return serverState, nil
		}
		return nil, errors.New("network unreachable")
	}
	store, _ := newTestStore(service)
	store.FetchAll(context.Background())
	require.Equal(t, 3, store.Count())

	service.toggleFn = func(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
		return nil, errors.New("service unavailable")
	}

	err := store.Toggle(context.Background(), "p2")
	require.Error(t, err)

	assert.False(t, store.IsFavorite("p2"))
	assert.Equal(t, 3, store.Count())
}

func TestToggleReconciliationOverwritesDrift(t *testing.T) {
	service := &fakeService{}
	store, _ := newTestStore(service)

	service.toggleFn = func(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
		// Server disagrees with the optimistic guess entirely.
		return payload("p2", "p3"), nil
	}

	require.NoError(t, store.Toggle(context.Background(), "p1"))

	assert.False(t, store.IsFavorite("p1"))
	assert.True(t, store.IsFavorite("p2"))
	assert.True(t, store.IsFavorite("p3"))
	assert.Equal(t, 2, store.Count())
}

func TestMutationsFailFastWithoutSession(t *testing.T) {
	service := &fakeService{}
	store, session := newTestStore(service)
	session.authenticated = false

	ctx := context.Background()
	assert.ErrorIs(t, store.Toggle(ctx, "p1"), ErrUnauthenticated)
	assert.ErrorIs(t, store.Add(ctx, "p1"), ErrUnauthenticated)
	assert.ErrorIs(t, store.Remove(ctx, "p1"), ErrUnauthenticated)
	assert.ErrorIs(t, store.ClearAll(ctx), ErrUnauthenticated)
}

func TestIsFavoriteNeverErrors(t *testing.T) {
	service := &fakeService{}
	store, session := newTestStore(service)
	session.authenticated = false

	assert.False(t, store.IsFavorite("anything"))
}

func TestAddAndRemoveAreIdempotent(t *testing.T) {
	service := &fakeService{
		getFn: func(ctx context.Context) (*models.FavoritesPayload, error) {
			return payload("p1"), nil
		},
	}
	store, _ := newTestStore(service)
	store.FetchAll(context.Background())

	require.NoError(t, store.Add(context.Background(), "p1"))
	assert.Zero(t, service.addCalls)

	require.NoError(t, store.Remove(context.Background(), "p9"))
	assert.Zero(t, service.removeCalls)
}

func TestClearAllEmptiesStateImmediately(t *testing.T) {
	service := &fakeService{
		getFn: func(ctx context.Context) (*models.FavoritesPayload, error) {
			return payload("p1", "p2"), nil
		},
	}
	store, _ := newTestStore(service)
	store.FetchAll(context.Background())
	require.Equal(t, 2, store.Count())

	service.clearFn = func(ctx context.Context) (*models.FavoritesPayload, error) {
		// Regardless of server latency the local set is already empty.
		assert.Zero(t, store.Count())
		assert.Empty(t, store.Entries())
		return payload(), nil
	}

	require.NoError(t, store.ClearAll(context.Background()))
	assert.Zero(t, store.Count())
}

func TestClearAllRollsBackOnFailure(t *testing.T) {
	service := &fakeService{
		getFn: func(ctx context.Context) (*models.FavoritesPayload, error) {
			return payload("p1", "p2"), nil
		},
	}
	store, _ := newTestStore(service)
	store.FetchAll(context.Background())

	service.clearFn = func(ctx context.Context) (*models.FavoritesPayload, error) {
		return nil, errors.New("service unavailable")
	}

	err := store.ClearAll(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, store.Count())
	assert.True(t, store.IsFavorite("p1"))
	assert.True(t, store.IsFavorite("p2"))
}

func TestFetchAllWithoutSessionResetsState(t *testing.T) {
	service := &fakeService{
		getFn: func(ctx context.Context) (*models.FavoritesPayload, error) {
			return payload("p1"), nil
		},
	}
	store, session := newTestStore(service)
	store.FetchAll(context.Background())
	require.Equal(t, 1, store.Count())

	session.authenticated = false
	store.FetchAll(context.Background())

	assert.Zero(t, store.Count())
	assert.Empty(t, store.Entries())
	assert.Equal(t, models.SyncStatusIdle, store.Status())
	assert.Empty(t, store.LastError())
}

func TestFetchAllFailureKeepsPreviousState(t *testing.T) {
	calls := 0
	service := &fakeService{}
	service.getFn = func(ctx context.Context) (*models.FavoritesPayload, error) {
		calls++
		if calls == 1 {
			return payload("p1"), nil
		}
		return nil, errors.New("timeout")
	}
	store, _ := newTestStore(service)

	store.FetchAll(context.Background())
	require.True(t, store.IsFavorite("p1"))

	store.FetchAll(context.Background())

	// Stale but consistent: the previous list survives the failure.
	assert.True(t, store.IsFavorite("p1"))
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, models.SyncStatusError, store.Status())
	assert.NotEmpty(t, store.LastError())
}
