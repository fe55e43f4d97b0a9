package service

import (
	"context"
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/chat"
	"github.com/anatoly-dev/go-store-sync/pkg/favorites"
	"github.com/anatoly-dev/go-store-sync/pkg/inactivity"
	"github.com/anatoly-dev/go-store-sync/pkg/metrics"
	"go.uber.org/zap"
)

// SyncService owns the lifecycle of the three sync components: it runs
// the initial favorites fetch, opens the chat connection and arms the
// inactivity guard, and tears all three down on Stop.
type SyncService struct {
	favorites  *favorites.Store
	chatClient *chat.Client
	guard      *inactivity.Guard
	logger     *zap.Logger
	metrics    *metrics.Metrics

	unsubscribeUnread     func()
	unsubscribeConnection func()
}

func NewSyncService(
	favoritesStore *favorites.Store,
	chatClient *chat.Client,
	guard *inactivity.Guard,
	logger *zap.Logger,
) *SyncService {
	service := &SyncService{
		favorites:  favoritesStore,
		chatClient: chatClient,
		guard:      guard,
		logger:     logger,
	}

	service.registerListeners()

	return service
}

func (s *SyncService) SetMetrics(metrics *metrics.Metrics) {
	s.metrics = metrics

	s.favorites.SetMetrics(&metrics.Favorites)
	s.chatClient.SetMetrics(&metrics.Chat)
	s.guard.SetMetrics(&metrics.Session)
}

func (s *SyncService) registerListeners() {
	s.unsubscribeConnection = s.chatClient.OnConnectionChange(func() {
		s.logger.Info("Chat connection state changed",
			zap.Bool("connected", s.chatClient.IsConnected()))

		s.chatClient.RequestUnreadCount()
	})

	s.unsubscribeUnread = s.chatClient.OnUnreadCountChange(func(count int) {
		s.logger.Info("Unread count updated", zap.Int("count", count))
	})
}

func (s *SyncService) Start() error {
	s.logger.Info("Starting sync service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.favorites.FetchAll(ctx)
	if errMsg := s.favorites.LastError(); errMsg != "" {
		s.logger.Warn("Initial favorites fetch failed", zap.String("error", errMsg))
	}

	s.chatClient.Connect()
	s.guard.Start()

	return nil
}

func (s *SyncService) Stop() {
	s.logger.Info("Stopping sync service")

	s.guard.Stop()
	s.chatClient.Disconnect()

	if s.unsubscribeUnread != nil {
		s.unsubscribeUnread()
	}
	if s.unsubscribeConnection != nil {
		s.unsubscribeConnection()
	}
}
