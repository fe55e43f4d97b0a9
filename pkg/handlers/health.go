package handlers

import (
	"fmt"
	"net/http"

	"github.com/anatoly-dev/go-store-sync/pkg/chat"
	"github.com/anatoly-dev/go-store-sync/pkg/favorites"
	"go.uber.org/zap"
)

type HealthCheckHandler struct {
	chatClient *chat.Client
	favorites  *favorites.Store
	logger     *zap.Logger
}

func NewHealthCheckHandler(chatClient *chat.Client, favorites *favorites.Store, logger *zap.Logger) *HealthCheckHandler {
	return &HealthCheckHandler{
		chatClient: chatClient,
		favorites:  favorites,
		logger:     logger,
	}
}

func (h *HealthCheckHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	connected := h.chatClient.IsConnected()
	count := h.favorites.Count()
	h.logger.Debug("Health check",
		zap.Bool("chatConnected", connected),
		zap.Int("favoritesCount", count))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"status":"ok","chat_connected":%t,"favorites_count":%d,"favorites_status":"%s"}`,
		connected, count, h.favorites.Status())))
}
