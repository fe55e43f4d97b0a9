package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anatoly-dev/go-store-sync/pkg/chat"
	"github.com/anatoly-dev/go-store-sync/pkg/favorites"
	"github.com/anatoly-dev/go-store-sync/pkg/models"
	"github.com/anatoly-dev/go-store-sync/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSession struct{}

func (stubSession) IsAuthenticated() bool { return false }
func (stubSession) Token() string         { return "" }
func (stubSession) UpdateActivity()       {}
func (stubSession) Clear()                {}

type stubService struct{}

func (stubService) GetFavorites(context.Context) (*models.FavoritesPayload, error) {
	return &models.FavoritesPayload{}, nil
}
func (stubService) ToggleFavorite(context.Context, string) (*models.FavoritesPayload, error) {
	return &models.FavoritesPayload{}, nil
}
func (stubService) AddToFavorites(context.Context, string) (*models.FavoritesPayload, error) {
	return &models.FavoritesPayload{}, nil
}
func (stubService) RemoveFromFavorites(context.Context, string) (*models.FavoritesPayload, error) {
	return &models.FavoritesPayload{}, nil
}
func (stubService) ClearAllFavorites(context.Context) (*models.FavoritesPayload, error) {
	return &models.FavoritesPayload{}, nil
}

func TestHealthCheckReportsComponentState(t *testing.T) {
	logger := zap.NewNop()
	chatClient := chat.NewClient("ws://localhost", stubSession{}, platform.Headless(), logger)
	store := favorites.NewStore(stubService{}, stubSession{}, logger)

	handler := NewHealthCheckHandler(chatClient, store, logger)

	rec := httptest.NewRecorder()
	handler.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"status":"ok","chat_connected":false,"favorites_count":0,"favorites_status":"idle"}`,
		rec.Body.String())
}
