package commands

import (
	"fmt"
	"sync"

	"github.com/anatoly-dev/go-store-sync/internal/service"
	"github.com/anatoly-dev/go-store-sync/pkg/auth"
	"github.com/anatoly-dev/go-store-sync/pkg/chat"
	"github.com/anatoly-dev/go-store-sync/pkg/config"
	"github.com/anatoly-dev/go-store-sync/pkg/favorites"
	"github.com/anatoly-dev/go-store-sync/pkg/handlers"
	"github.com/anatoly-dev/go-store-sync/pkg/inactivity"
	"github.com/anatoly-dev/go-store-sync/pkg/metrics"
	"github.com/anatoly-dev/go-store-sync/pkg/platform"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Application struct {
	configPath     string
	cfg            *config.Config
	logger         *zap.Logger
	instanceID     string
	session        *auth.Session
	redisStore     *auth.RedisStore
	favoritesStore *favorites.Store
	chatClient     *chat.Client
	guard          *inactivity.Guard
	metrics        *metrics.Metrics
	metricsHandler *metrics.MetricsHandler
	syncService    *service.SyncService
	healthHandler  *handlers.HealthCheckHandler
	server         *service.Server
}

func NewApplication(configPath string) *Application {
	return &Application{
		configPath: configPath,
		instanceID: uuid.New().String(),
	}
}

func (a *Application) Init() error {
	if err := a.initConfig(); err != nil {
		return err
	}

	if err := a.initLogger(); err != nil {
		return err
	}

	a.logger.Info("Starting storefront sync agent",
		zap.String("instanceID", a.instanceID),
		zap.String("version", "1.0.0"))

	if err := a.initSession(); err != nil {
		return err
	}

	a.initFavorites()
	a.initChat()
	a.initGuard()
	a.initMetrics()
	a.initServices()
	a.initHandlers()
	a.initServer()

	return nil
}

func (a *Application) initConfig() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *Application) initLogger() error {
	logger, err := config.NewLogger(&a.cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *Application) initSession() error {
	var store auth.CredentialStore
	if a.cfg.Session.Redis.Addr != "" {
		redisStore, err := auth.NewRedisStore(&a.cfg.Session, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create Redis credential store: %w", err)
		}
		a.redisStore = redisStore
		store = redisStore
	} else {
		store = auth.NewMemoryStore()
	}

	a.session = auth.NewSession(store, platform.Native(), a.logger)
	return nil
}

func (a *Application) initFavorites() {
	client := favorites.NewClient(&a.cfg.Favorites, a.session)
	a.favoritesStore = favorites.NewStore(client, a.session, a.logger)
}

func (a *Application) initChat() {
	a.chatClient = chat.NewClient(
		a.cfg.Chat.URL,
		a.session,
		platform.Native(),
		a.logger,
		chat.WithMaxReconnectAttempts(a.cfg.Chat.MaxReconnectAttempts),
		chat.WithReconnectBackoff(a.cfg.Chat.ReconnectBackoff),
	)
}

func (a *Application) initGuard() {
	a.guard = inactivity.NewGuard(
		a.cfg.Inactivity.Limit,
		a.cfg.Inactivity.Warning,
		a.cfg.Inactivity.LoginPath,
		a.session,
		newLogNavigator(a.logger),
		a.logger,
		inactivity.WithWarningCallback(func(secondsRemaining int) {
			a.logger.Info("Inactivity countdown", zap.Int("secondsRemaining", secondsRemaining))
		}),
	)
}

func (a *Application) initMetrics() {
	a.metrics = metrics.NewMetrics("storesync")
	a.metricsHandler = metrics.NewMetricsHandler(a.metrics, a.logger)
}

func (a *Application) initServices() {
	a.syncService = service.NewSyncService(a.favoritesStore, a.chatClient, a.guard, a.logger)
	a.syncService.SetMetrics(a.metrics)
}

func (a *Application) initHandlers() {
	a.healthHandler = handlers.NewHealthCheckHandler(a.chatClient, a.favoritesStore, a.logger)
}

func (a *Application) initServer() {
	a.server = service.NewServer(a.healthHandler, a.metricsHandler, a.syncService, a.logger, &a.cfg.Server)
}

func (a *Application) Run() error {
	return a.server.Start()
}

func (a *Application) Stop() {
	if a.redisStore != nil {
		a.redisStore.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

// logNavigator is the guard's redirect primitive in a headless agent:
// it records the virtual location and logs where a UI would navigate.
type logNavigator struct {
	logger *zap.Logger

	mu   sync.Mutex
	path string
}

func newLogNavigator(logger *zap.Logger) *logNavigator {
	return &logNavigator{logger: logger, path: "/"}
}

func (n *logNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *logNavigator) Redirect(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()

	n.logger.Info("Redirecting", zap.String("path", path))
}

func NewRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the storefront sync agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApplication(configPath)
			if err := app.Init(); err != nil {
				return err
			}
			defer app.Stop()
			return app.Run()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	return cmd
}
