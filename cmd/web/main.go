package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/ellarun/ellarun/internal/envstruct"
	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/logging"
	"github.com/ellarun/ellarun/internal/plan"
	"github.com/ellarun/ellarun/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	planService    *plan.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"ELLARUN_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"ELLARUN_SQLITE_URL" envDefault:"./ellarun.sqlite3"`
	// APIURL is the external workout-generation endpoint. Leave empty to run fully offline.
	APIURL string `env:"ELLARUN_API_URL" envDefault:""`
	// APIKey authenticates against the external workout-generation API.
	APIKey string `env:"ELLARUN_API_KEY" envDefault:""`
	// APIHost is the host header expected by the external workout-generation API.
	APIHost string `env:"ELLARUN_API_HOST" envDefault:""`
	// OpenAIAPIKey enables AI-generated exercise reference content.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	// CacheTTL is how long generated plans stay fresh in the cache.
	CacheTTL time.Duration `env:"ELLARUN_CACHE_TTL" envDefault:"24h"`
	// PollInterval is the wait between polls of a pending remote generation.
	PollInterval time.Duration `env:"ELLARUN_POLL_INTERVAL" envDefault:"10s"`
	// MaxPollAttempts bounds how many times a pending remote generation is re-polled.
	MaxPollAttempts int `env:"ELLARUN_MAX_POLL_ATTEMPTS" envDefault:"5"`
	// ProgramStart anchors the offline progression for profiles without their own start date.
	// Formatted as 2006-01-02; empty means the progression starts now.
	ProgramStart string `env:"ELLARUN_PROGRAM_START" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var programStart time.Time
	if cfg.ProgramStart != "" {
		if programStart, err = time.Parse("2006-01-02", cfg.ProgramStart); err != nil {
			return errors.Wrap(err, "parse program start", slog.String("value", cfg.ProgramStart))
		}
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	planService := plan.NewService(db, logger, plan.Config{
		APIURL:          cfg.APIURL,
		APIKey:          cfg.APIKey,
		APIHost:         cfg.APIHost,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		CacheTTL:        cfg.CacheTTL,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
		ProgramStart:    programStart,
	})

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		planService:    planService,
	}

	go func() {
		if warmErr := planService.WarmCache(ctx); warmErr != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "cache warming failed", errors.SlogError(warmErr))
		}
	}()

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
