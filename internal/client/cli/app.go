package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/imctrack/imctrack/internal/client/api"
	"github.com/imctrack/imctrack/internal/client/config"
	"github.com/imctrack/imctrack/internal/client/env"
	"github.com/imctrack/imctrack/internal/client/repositories/localdata"
	"github.com/imctrack/imctrack/internal/client/services"
	"github.com/imctrack/imctrack/internal/client/storage"
	"github.com/imctrack/imctrack/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the tracker CLI together: the local cache, the API client and
// the application services, driven by a line-oriented REPL.
type App struct {
	config  *config.Config
	env     *env.Env
	client  api.Client
	store   *storage.Store
	auth    *services.AuthService
	sync    *services.SyncService
	limits  *services.LimitsService
	tracker *services.TrackerService
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	level := slog.LevelWarn
	if c.DevMode {
		level = slog.LevelDebug
	}
	log := logging.NewTextLogger(os.Stderr, level)

	db, err := storage.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := api.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	e := env.New()
	store := storage.New(localdata.NewSQLiteRepository(db), e, log)

	auth := services.NewAuthService(apiClient, store, nil, log)
	sync := services.NewSyncService(apiClient, store, e, log, c.SyncPacing)
	limits := services.NewLimitsService(apiClient, log)
	tracker := services.NewTrackerService(store, sync, limits, e, log)

	return &App{
		config:  c,
		env:     e,
		client:  apiClient,
		store:   store,
		auth:    auth,
		sync:    sync,
		limits:  limits,
		tracker: tracker,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores the session from the renewal cookie, loads the validation
// limits, reconciles the cache when a session exists and enters the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	a.auth.InitializeSession(ctx)
	a.limits.Load(ctx)
	if a.auth.IsAuthenticated() {
		a.sync.PullFromBackend(ctx)
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}
