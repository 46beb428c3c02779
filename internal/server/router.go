// Package server hosts the records API on a TCP listener, adding the
// operational endpoints and the cross-cutting HTTP middleware.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

// Options tunes the HTTP front.
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	// RateLimit is the number of requests allowed per client IP per minute. Zero disables it.
	RateLimit int
}

type Router struct {
	store sdk.Pinger
	api   http.Handler
	opts  Options
	cert  *tls.Certificate

	mu  sync.Mutex
	srv *http.Server
	// listener is set once Listen has bound its address
	listener net.Listener
}

// NewRouter wraps api, the records handler, with health, readiness and metrics routes.
func NewRouter(store sdk.Pinger, api http.Handler, opts Options) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "celerix-records"
	}
	return &Router{store: store, api: api, opts: opts}
}

// SetCertificate sets the TLS certificate for the router
func (r *Router) SetCertificate(cert tls.Certificate) {
	r.cert = &cert
}

// Handler returns the composed HTTP handler.
func (r *Router) Handler() http.Handler {
	mux := chi.NewRouter()

	allowed := r.opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	if r.opts.RateLimit > 0 {
		mux.Use(httprate.LimitByIP(r.opts.RateLimit, time.Minute))
	}

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := r.store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("store not ready")
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Method("GET", "/metrics", promhttp.Handler())

	// Everything else belongs to the records API.
	mux.NotFound(r.api.ServeHTTP)
	mux.MethodNotAllowed(r.api.ServeHTTP)

	return otelhttp.NewHandler(mux, r.opts.ServiceName)
}

// Listen binds addr and serves until Shutdown is called.
func (r *Router) Listen(addr string) error {
	var listener net.Listener
	var err error

	if r.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*r.cert}, MinVersion: tls.VersionTLS12}
		listener, err = tls.Listen("tcp", addr, config)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       5 * time.Minute,
	}

	r.mu.Lock()
	r.listener = listener
	r.srv = srv
	r.mu.Unlock()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before Listen has started.
func (r *Router) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	srv := r.srv
	r.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
