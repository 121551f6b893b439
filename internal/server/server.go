// Package server assembles the HTTP surface of splitledger: Connect
// services, health and metrics endpoints, and the h2c listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

const shutdownTimeout = 10 * time.Second

// Server serves the splitledger API over HTTP/1.1 and h2c.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler
}

// New wires services over store. The registry receives RPC and Go runtime
// metrics and is exposed on /metrics.
func New(cfg *config.Config, store storage.Store, logger *slog.Logger, registry *prometheus.Registry) *Server {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	// First interceptor is outermost: metrics see every call, logging sees
	// the authenticated user.
	interceptors := []connect.Interceptor{metrics.Interceptor()}
	authInterceptors := []connect.Interceptor{metrics.Interceptor()}

	var jwtManager *auth.JWTManager
	if cfg.Auth.Enabled {
		jwtManager = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		interceptors = append(interceptors, middleware.RequireAuth(jwtManager))
		authInterceptors = append(authInterceptors, middleware.OptionalAuth(jwtManager))
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor(logger))
	authInterceptors = append(authInterceptors, middleware.LoggingInterceptor(logger))

	locks := service.NewLocks()
	mux := http.NewServeMux()
	mux.Handle(api.NewGroupServiceHandler(
		service.NewGroupService(store, locks, logger),
		connect.WithInterceptors(interceptors...),
	))
	mux.Handle(api.NewExpenseServiceHandler(
		service.NewExpenseService(store, locks, logger),
		connect.WithInterceptors(interceptors...),
	))
	if jwtManager != nil {
		mux.Handle(api.NewAuthServiceHandler(
			service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, logger),
			connect.WithInterceptors(authInterceptors...),
		))
	}

	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: middleware.HTTPLogging(logger, middleware.CORS(mux)),
	}
}

// Handler returns the root handler, without h2c.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           h2c.NewHandler(s.handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Connect server starting",
			"address", s.cfg.Server.Addr,
			"auth", s.cfg.Auth.Enabled,
			"driver", s.cfg.Database.Driver,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
