package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/domain/learning"
	httpapi "github.com/yungbote/coursehub/internal/http"
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
)

const ServiceName = "coursehub"

type App struct {
	Log      *logger.Logger
	Config   *config.Config
	Metrics  *observability.Metrics
	Clients  Clients
	Services Services
	Router   *gin.Engine

	server       *http.Server
	stopObserver func()
	otelShutdown func(context.Context) error
}

type Options struct {
	// Courses seeds the store. Required.
	Courses []learning.Course
	Version string
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if len(opts.Courses) == 0 {
		return nil, errors.New("app: course catalog is empty")
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: ServiceName,
		Environment: cfg.Env,
		Version:     opts.Version,
	})
	metrics := observability.New(cfg.Metrics.Enabled, log)

	clients := WireClients(ctx, log, cfg)

	services, err := wireServices(log, cfg, clients, metrics, opts.Courses)
	if err != nil {
		clients.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}
	stop := observeStore(log, services.Store, metrics)

	handlers := wireHandlers(log, services)
	router := wireRouter(cfg, log, metrics, handlers)

	return &App{
		Log:          log,
		Config:       cfg,
		Metrics:      metrics,
		Clients:      clients,
		Services:     services,
		Router:       router,
		server:       httpapi.NewServer(cfg, router),
		stopObserver: stop,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down within
// the configured timeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, 15*time.Second)
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		a.Log.Info("HTTP server shutting down")
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.stopObserver != nil {
		a.stopObserver()
		a.stopObserver = nil
	}
	a.Services.close()
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
