package http

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-explorer/internal/config"
	"github.com/fleshka4/pair-explorer/internal/service"
	"github.com/fleshka4/pair-explorer/internal/session"
)

const (
	defaultTimeout      = 5 * time.Second
	defaultFetchTimeout = 8 * time.Second
)

// Server represents the HTTP transport layer.
type Server struct {
	svc      service.Service
	sess     *session.Session
	mux      *http.ServeMux
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	events   *session.Broadcaster
	upgrader websocket.Upgrader

	// done is closed on shutdown to end websocket streams, which
	// http.Server.Shutdown does not track.
	done      chan struct{}
	closeOnce sync.Once

	graceTimeout      time.Duration
	readHeaderTimeout time.Duration
	requestTimeout    time.Duration
	fetchTimeout      time.Duration
}

// Option configures Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithEvents enables the /session/events websocket stream fed by b.
func WithEvents(b *session.Broadcaster) Option {
	return func(s *Server) {
		s.events = b
	}
}

// NewServer creates a new HTTP server with registered routes.
func NewServer(svc service.Service, sess *session.Session, cfg config.Config, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.New("service is nil")
	}
	if sess == nil {
		return nil, errors.New("session is nil")
	}

	s := &Server{
		svc:      svc,
		sess:     sess,
		mux:      http.NewServeMux(),
		logger:   zap.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),

		graceTimeout:      cfg.GraceTimeout,
		readHeaderTimeout: cfg.ReadHeaderTimeout,
		requestTimeout:    cfg.RequestTimeout,
		fetchTimeout:      cfg.FetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Fallbacks
	if s.graceTimeout <= 0 {
		s.graceTimeout = defaultTimeout
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = defaultFetchTimeout
	}

	s.mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("pong")); err != nil {
			s.logger.Warn("ping write error", zap.Error(err))
		}
	})
	s.mux.HandleFunc("GET /pair", s.handlePair)
	s.mux.HandleFunc("GET /session", s.handleSession)
	s.mux.HandleFunc("PUT /session/address", s.handleSessionAddress)
	s.mux.HandleFunc("POST /session/fetch", s.handleSessionFetch)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	if s.events != nil {
		s.mux.HandleFunc("GET /session/events", s.handleSessionEvents)
	}

	return s, nil
}

// ListenAndServe serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.logMiddleware(s.mux),
		ReadHeaderTimeout: s.readHeaderTimeout,
		ReadTimeout:       s.requestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "srv.ListenAndServe")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	s.closeOnce.Do(func() { close(s.done) })

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.graceTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "srv.Shutdown")
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades through the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logMiddleware logs each HTTP request and the time taken to process it.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
