// Package api serves the todo REST resource over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todo-tracker/internal/store"
	"github.com/nhle/todo-tracker/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ServerOptions configures an API server.
type ServerOptions struct {
	Store     store.Store
	Logger    *log.Logger
	Validator *validation.Validator
}

// Server handles the /api/todos resource.
type Server struct {
	store     store.Store
	logger    *log.Logger
	validator *validation.Validator
}

// NewServer creates an API server. Store is required; a nil logger logs to
// stderr and a nil validator is compiled on demand.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "api"})
	}
	validator := opts.Validator
	if validator == nil {
		v, err := validation.New()
		if err != nil {
			return nil, fmt.Errorf("compile request schemas: %w", err)
		}
		validator = v
	}

	return &Server{
		store:     opts.Store,
		logger:    logger,
		validator: validator,
	}, nil
}

// Handler returns the HTTP handler for the API, wrapped in recovery,
// request logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/todos", s.handleList)
	mux.HandleFunc("POST /api/todos", s.handleCreate)
	mux.HandleFunc("GET /api/todos/{id}", s.handleGet)
	mux.HandleFunc("PATCH /api/todos/{id}", s.handlePatch)
	mux.HandleFunc("DELETE /api/todos/{id}", s.handleDelete)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		notFound(w)
	})
	return s.recoverHandler(s.logRequests(cors(mux)))
}

// Serve runs the server on addr until ctx is done, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, listener, shutdownTimeout)
}

// ServeListener is like Serve but accepts connections on an existing
// listener.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.Serve(listener)
	}()
	s.logger.Info("listening", "addr", listener.Addr().String())

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}
