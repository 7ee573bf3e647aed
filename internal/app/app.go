package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"

	"refracalc/internal/config"
	apierrors "refracalc/internal/errors"
	"refracalc/internal/infrastructure"
	customMiddleware "refracalc/internal/middleware"
	"refracalc/internal/services"
	"refracalc/internal/store"
	handlers "refracalc/internal/transport/http"
	ws "refracalc/internal/websocket"
	"refracalc/pkg/contracts"
)

// AppName is reported in startup logs
const AppName = "refracalc"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Store         store.Store
	WebSocketHub  *ws.Hub
	Refractometer *services.RefractometerService
	HealthService *services.HealthService

	mu       sync.Mutex
	listener net.Listener
	serveErr chan error
}

// NewApplication wires every component from cfg. A nil logger selects the
// global logger built from cfg.Logging.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		var err error
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.InfoContext(ctx, "application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.String("storage", cfg.Storage.Driver))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.NewMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		serveErr:      make(chan error, 1),
	}

	if err := app.initializeServices(ctx); err != nil {
		_ = otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices opens the store and builds the services on top of it
func (a *Application) initializeServices(ctx context.Context) error {
	st, err := store.New(ctx, a.Config.Storage, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	hub := ws.NewHub(a.Metrics, a.Logger)

	svc, err := services.NewRefractometerService(ctx, a.Config.Engine, st, hub,
		a.Metrics, a.OTelProviders.Tracer, a.Logger)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to initialize refractometer service: %w", err)
	}

	hub.Start()
	a.Store = st
	a.WebSocketHub = hub
	a.Refractometer = svc
	a.HealthService = services.NewHealthService(st, hub, svc, a.Logger)
	return nil
}

// setupRouter follows the middleware order RequestID, RealIP, OTel, Logger,
// Recoverer, then the per-route Timeout. The websocket and metrics endpoints
// skip the wrapping middleware so their writers stay hijackable.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Server.AllowedOrigins, a.Logger))
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Tracing(a.OTelProviders.Tracer, a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Server.AllowedOrigins,
		}))
		if a.Config.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(a.Config.RateLimit.RPS, a.Config.RateLimit.Burst, a.Logger).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			if a.Config.Server.RequestTimeout > 0 {
				r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
			}
			a.setupAPIRoutes(r)
		})
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator(a.Logger)
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	handlers.NewHealthHandler(a.HealthService, a.Logger).RegisterRoutes(r)
	handlers.NewEstimateHandler(a.Refractometer, validator, errorHandler, a.Logger).RegisterRoutes(r)
	handlers.NewCalibrationHandler(a.Refractometer, validator, errorHandler, a.Logger).RegisterRoutes(r)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listener and serves in the background
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", ln.Addr().String()),
		slog.Int("calibration_points", len(a.Refractometer.Calibration().Points())))
	return nil
}

// Addr returns the bound address once Start has succeeded
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop shuts the server down and releases every component
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	a.WebSocketHub.Stop()
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or the server
// fails, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "received shutdown signal")
	case err, ok := <-a.serveErr:
		if ok {
			serveErr = err
		}
	}

	return errors.Join(serveErr, a.Stop(ctx))
}
