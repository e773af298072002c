package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/auth"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/runner"
)

// Identity headers set by the OAuth proxy.
const (
	HeaderAuthProvider = "X-Auth-Provider"
	HeaderAuthUser     = "X-Auth-User"
)

const maxBodySize = 1 << 20

// Asker answers a question with the notes specialist.
type Asker interface {
	Ask(ctx context.Context, history []core.Message, input string, emit core.EmitFunc) (*agent.Result, error)
}

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Auth gates the agent routes when enabled.
	Auth   *auth.Allowlist
	Logger logging.Logger
}

// Server is the HTTP front end.
type Server struct {
	asker  Asker
	graph  runner.Graph
	runner *runner.Runner
	opts   Options
	logger logging.Logger
}

// New creates a server. graph answers stateless supervisor requests and r
// answers requests bound to a session.
func New(asker Asker, graph runner.Graph, r *runner.Runner, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:            ":8000",
		ShutdownTimeout: 10 * time.Second,
		Auth:            auth.NewAllowlist(""),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Auth == nil {
		opts.Auth = auth.NewAllowlist("")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Server{asker: asker, graph: graph, runner: r, opts: opts, logger: opts.Logger}
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("GET /docs", s.handleDocs)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("POST /notion-agent/invoke", s.requireUser(http.HandlerFunc(s.handleAgentInvoke)))
	mux.Handle("POST /notion-agent/stream", s.requireUser(http.HandlerFunc(s.handleAgentStream)))
	mux.Handle("POST /supervisor/invoke", s.requireUser(http.HandlerFunc(s.handleSupervisorInvoke)))
	mux.Handle("POST /supervisor/stream", s.requireUser(http.HandlerFunc(s.handleSupervisorStream)))
	mux.Handle("POST /sessions", s.requireUser(http.HandlerFunc(s.handleCreateSession)))
	mux.Handle("DELETE /sessions/{id}", s.requireUser(http.HandlerFunc(s.handleDeleteSession)))

	// Middleware chain: recovery -> body size -> access log -> mux
	return s.recovery(bodySize(s.accessLog(mux)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server.shutdown", "timeout", s.opts.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
