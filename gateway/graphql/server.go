package graphql

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"

	"github.com/barnslig/mediacccde-graphql/errors"
	gwhttp "github.com/barnslig/mediacccde-graphql/gateway/http"
)

// Server manages the HTTP server for the GraphQL endpoint, the playground
// and the health endpoint.
type Server struct {
	config     Config
	graphql    http.Handler
	health     http.Handler
	logger     *slog.Logger
	httpServer *http.Server
	mux        *http.ServeMux
	handler    http.Handler
	listener   net.Listener

	// Lifecycle
	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once // Ensures stopChan is closed exactly once
}

// NewServer creates a new GraphQL HTTP server. health may be nil.
func NewServer(config Config, graphqlHandler, healthHandler http.Handler, logger *slog.Logger) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Server", "NewServer", "config validation")
	}

	if graphqlHandler == nil {
		return nil, errors.WrapFatal(fmt.Errorf("graphql handler is nil"), "Server", "NewServer",
			"graphql handler is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:   config,
		graphql:  graphqlHandler,
		health:   healthHandler,
		logger:   logger,
		mux:      http.NewServeMux(),
		stopChan: make(chan struct{}),
	}, nil
}

// Setup configures the HTTP server and routes
func (s *Server) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return nil
	}

	s.mux.Handle(s.config.Path, gwhttp.Chain(s.graphql,
		gwhttp.AllowMethods(http.MethodGet, http.MethodPost),
		gwhttp.LimitBody(maxBodyBytes)))

	if s.health != nil {
		s.mux.Handle("GET /health", s.health)
	}

	// GraphQL Playground (if enabled)
	if s.config.EnablePlayground {
		s.mux.Handle("GET /{$}", playground.Handler("media.ccc.de GraphQL", s.config.Path))
		s.logger.Info("GraphQL Playground enabled",
			"url", fmt.Sprintf("http://%s/", s.config.BindAddress))
	}

	middlewares := []gwhttp.Middleware{gwhttp.RequestID, gwhttp.Logging(s.logger)}
	if s.config.EnableCORS {
		middlewares = append(middlewares, gwhttp.CORS(s.config.CORSOrigins))
	}
	s.handler = gwhttp.Chain(s.mux, middlewares...)

	// Write timeout leaves room for the response after the execution timeout
	s.httpServer = &http.Server{
		Addr:              s.config.BindAddress,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.Timeout(),
		WriteTimeout:      s.config.Timeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("Server configured",
		"address", s.config.BindAddress,
		"path", s.config.Path,
		"timeout", s.config.Timeout())

	return nil
}

// Handler returns the fully wrapped handler. Setup must have been called.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// Start starts the HTTP server and blocks until ctx is cancelled, Stop is
// called or serving fails. The ready channel is closed once the listener is
// bound.
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Server", "Start", "server already running")
	}
	if s.httpServer == nil {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrNotStarted, "Server", "Start", "Setup was not called")
	}

	listener, err := net.Listen("tcp", s.config.BindAddress)
	if err != nil {
		s.mu.Unlock()
		return errors.WrapFatal(err, "Server", "Start", fmt.Sprintf("listen on %s", s.config.BindAddress))
	}
	s.listener = listener
	s.running = true
	server := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("Server starting", "address", listener.Addr().String())

		if err := server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
			errChan <- err
		}
	}()

	if ready != nil {
		close(ready)
	}

	select {
	case <-ctx.Done():
		s.logger.Info("Server context cancelled, shutting down")
		return s.Stop(30 * time.Second)

	case <-s.stopChan:
		s.logger.Info("Server stop requested")
		return nil

	case err, ok := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		if !ok {
			return nil
		}
		return errors.WrapFatal(err, "Server", "Start", "HTTP server failed")
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil // Already stopped
	}
	server := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Server stopping")

	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server gracefully", "error", err)
		return errors.WrapTransient(err, "Server", "Stop", "graceful shutdown failed")
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Server stopped")
	return nil
}

// Address returns the bound listener address while running, otherwise the
// configured bind address.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.running && s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.BindAddress
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
