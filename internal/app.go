package internal

import (
	"context"
	"errors"
	"ess/internal/controllers"
	"ess/internal/providers"
	"ess/internal/services"
	"ess/internal/structures"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

type App struct {
	WebServer *http.Server

	session services.SiteSessionInterface
	conf    *structures.Config
	logger  providers.Logger
	addr    chan string
}

func NewApp(healthController *controllers.HealthController, session services.SiteSessionInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	instrumentedAPI := providers.RequestMiddleware(metrics, logger, apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         net.JoinHostPort(conf.WebServer.Host, strconv.Itoa(conf.WebServer.Port)),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: conf.Site.Timeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		session: session,
		conf:    conf,
		logger:  logger,
		addr:    make(chan string, 1),
	}
}

// Addr blocks until Run has tried to listen and returns the bound address, or
// "" when listening failed.
func (a *App) Addr() string {
	addr := <-a.addr
	a.addr <- addr
	return addr
}

// Run restores the persisted session, serves the API until ctx is done or a
// shutdown signal arrives, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)

	snapshot, err := a.session.Restore(ctx)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}
	a.logger.Infof(providers.TypeApp, "Session state: %s", snapshot.State)

	listener, err := net.Listen("tcp", a.WebServer.Addr)
	if err != nil {
		a.addr <- ""
		return fmt.Errorf("listen %s: %w", a.WebServer.Addr, err)
	}
	a.addr <- listener.Addr().String()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", listener.Addr())
		if err := a.WebServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = a.WebServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}
