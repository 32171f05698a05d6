package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hooplabs/courtside/external/leaguesync"
	"github.com/hooplabs/courtside/internal/config"
	"github.com/hooplabs/courtside/internal/infrastructure/repository/memory"
	"github.com/hooplabs/courtside/internal/interfaces/httpapi"
	"github.com/hooplabs/courtside/internal/observability"
	idgen "github.com/hooplabs/courtside/internal/platform/id"
	"github.com/hooplabs/courtside/internal/platform/logging"
	"github.com/hooplabs/courtside/internal/platform/resilience"
	"github.com/hooplabs/courtside/internal/usecase"
)

// App owns the HTTP server and everything that needs an orderly stop: the
// scoring service's sync queue, observability exporters and the pprof
// sidecar.
type App struct {
	Server *http.Server

	scoringService  *usecase.ScoringService
	logger          *slog.Logger
	pprofServer     *http.Server
	uptraceShutdown func(context.Context) error
	pyroscopeStop   func() error
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	zapLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(zapLogger)

	uptraceShutdown, err := observability.InitUptrace(cfg, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("start pprof server: %w", err)
	}

	gameRepo := memory.NewGameRepository(memory.SeedGames())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())

	gateway := leaguesync.NewClient(leaguesync.ClientConfig{
		BaseURL:     cfg.LeagueSyncBaseURL,
		Token:       cfg.LeagueSyncToken,
		Timeout:     cfg.LeagueSyncTimeout,
		Logger:      zapLogger,
		IDGenerator: idgen.NewRandomGenerator(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LeagueSyncCircuitEnabled,
			FailureThreshold: cfg.LeagueSyncCircuitFailureCount,
			OpenTimeout:      cfg.LeagueSyncCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LeagueSyncCircuitHalfOpenMaxReq,
		},
	})

	leagueSvc := usecase.NewLeagueService(gameRepo, teamRepo, playerRepo, logger)
	scoringSvc, err := usecase.NewScoringService(gameRepo, playerRepo, gateway, cfg.SyncWorkers, logger)
	if err != nil {
		return nil, fmt.Errorf("build scoring service: %w", err)
	}

	liveFeed := httpapi.NewLiveFeed(scoringSvc, logger)
	scoringSvc.SetListener(liveFeed)

	handler := httpapi.NewHandler(leagueSvc, scoringSvc, logger)
	router := httpapi.NewRouter(handler, liveFeed, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:          server,
		scoringService:  scoringSvc,
		logger:          logger,
		pprofServer:     pprofServer,
		uptraceShutdown: uptraceShutdown,
		pyroscopeStop:   pyroscopeStop,
	}, nil
}

// Shutdown stops the HTTP server, drains in-flight gateway syncs and tears
// down observability. Errors are logged rather than aborting the sequence so
// one failing component does not leave the rest running.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)

	a.scoringService.Close()

	if stopErr := observability.StopPprofServer(a.pprofServer, a.logger, 5*time.Second); stopErr != nil {
		a.logger.Error("stop pprof server failed", "error", stopErr)
	}
	if pyroErr := a.pyroscopeStop(); pyroErr != nil {
		a.logger.Error("stop pyroscope failed", "error", pyroErr)
	}
	if traceErr := a.uptraceShutdown(ctx); traceErr != nil {
		a.logger.Error("shutdown uptrace failed", "error", traceErr)
	}
	if syncErr := logging.Default().Sync(); syncErr != nil {
		a.logger.Debug("flush zap logger failed", "error", syncErr)
	}

	return err
}
