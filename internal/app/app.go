package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dayanaadylkhanova/travel-portal/internal/adapter/store/postgres"
	http_server "github.com/dayanaadylkhanova/travel-portal/internal/adapter/transport/http"
	"github.com/dayanaadylkhanova/travel-portal/internal/cache"
	"github.com/dayanaadylkhanova/travel-portal/internal/service"
	"github.com/dayanaadylkhanova/travel-portal/pkg/config"
	"go.uber.org/zap"
)

type AppInfo struct {
	Name      string
	BuildTime string
	Commit    string
	Release   string
}

type App struct {
	cfg  config.Config
	info *AppInfo
	log  *zap.Logger

	store  *postgres.Store
	cache  *cache.Cache
	server *http_server.Server
}

func New(ctx context.Context, cfg config.Config, info *AppInfo, log *zap.Logger) (*App, error) {
	// 1) Store (Postgres): доступы, выгрузка счетов, справочник авиакомпаний
	st, err := postgres.New(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppStartup, err)
	}

	// 2) Pipeline
	rc := cache.New(cfg.CacheTTL, cache.WithMaxEntries(cfg.CacheMaxEntries))
	fn := service.NewFunction(
		log,
		service.NewAuthorizer(log, st, cfg.LookupTimeout),
		service.NewFetcher(log, st, cfg.FetchConcurrency, cfg.FetchTimeout),
		service.NewNameResolver(log, st, nil, cfg.LookupTimeout),
		rc,
		service.NewBreaker(log, "data-backend"),
		service.FunctionConfig{
			CacheTTL:        cfg.CacheTTL,
			FetchTimeout:    cfg.FetchTimeout,
			DownloadTimeout: cfg.DownloadTimeout,
			ComputeTimeout:  cfg.ComputeTimeout,
		},
	)

	// 3) HTTP server
	srv := http_server.NewServer(
		log,
		fn,
		st,
		http_server.NewSessions(cfg.SessionSecret, cfg.SessionTTL),
		http_server.NewDomainMapper(cfg.DomainAliases),
		http_server.Options{
			Addr:            cfg.ListenAddr,
			FunctionKey:     cfg.FunctionKey,
			CORSOrigins:     cfg.CORSOrigins,
			RateLimitPerMin: cfg.RateLimitPerMin,
			WindowYears:     cfg.DefaultWindowYears,
		},
	)

	return &App{
		cfg:    cfg,
		info:   info,
		log:    log,
		store:  st,
		cache:  rc,
		server: srv,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting",
		zap.String("app", a.info.Name),
		zap.String("release", a.info.Release),
		zap.String("commit", a.info.Commit),
		zap.String("build_time", a.info.BuildTime))

	// Start HTTP
	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- a.server.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
		// graceful
		runErr = ErrAppShutdownNormal
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("%w: %v", ErrAppStartup, err)
		} else {
			runErr = ErrAppShutdownNormal
		}
	}

	// Graceful shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownWait)
	defer cancelShutdown()
	if err := a.server.Shutdown(shutdownCtx); err != nil && errors.Is(runErr, ErrAppShutdownNormal) {
		runErr = fmt.Errorf("%w: %v", ErrAppShutdownWithError, err)
	}
	a.cache.Clear()
	a.store.Close()

	return runErr
}
