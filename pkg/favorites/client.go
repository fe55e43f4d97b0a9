package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/auth"
	"github.com/anatoly-dev/go-store-sync/pkg/config"
	"github.com/anatoly-dev/go-store-sync/pkg/models"
)

// Client implements Service against the storefront favorites endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	session auth.SessionProvider
}

type envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Data    models.FavoritesPayload `json:"data"`
}

func NewClient(cfg *config.FavoritesConfig, session auth.SessionProvider) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		session: session,
	}
}

func (c *Client) GetFavorites(ctx context.Context) (*models.FavoritesPayload, error) {
	return c.do(ctx, http.MethodGet, "/favorites")
}

func (c *Client) ToggleFavorite(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
	return c.do(ctx, http.MethodPost, "/favorites/toggle/"+productID)
}

func (c *Client) AddToFavorites(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
	return c.do(ctx, http.MethodPost, "/favorites/"+productID)
}

func (c *Client) RemoveFromFavorites(ctx context.Context, productID string) (*models.FavoritesPayload, error) {
	return c.do(ctx, http.MethodDelete, "/favorites/"+productID)
}

func (c *Client) ClearAllFavorites(ctx context.Context) (*models.FavoritesPayload, error) {
	return c.do(ctx, http.MethodDelete, "/favorites")
}

func (c *Client) do(ctx context.Context, method, path string) (*models.FavoritesPayload, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build favorites request: %w", err)
	}

	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("favorites request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("favorites service returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode favorites response: %w", err)
	}

	if !env.Success {
		if env.Message != "" {
			return nil, fmt.Errorf("favorites service error: %s", env.Message)
		}
		return nil, fmt.Errorf("favorites service reported failure")
	}

	return &env.Data, nil
}
