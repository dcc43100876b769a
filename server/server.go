// Package server exposes the payment core over HTTP: the content-access
// flow with its 402 challenge headers, requirement building, tips, the
// convenience proof lookup and payer history.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainpress/paywall"
	"github.com/chainpress/paywall/logger"
)

// Server is the HTTP front of a Paywall.
type Server struct {
	router *mux.Router
	pw     *paywall.Paywall
	log    logger.Logger
	http   *http.Server
}

// New creates a server over the given paywall.
func New(pw *paywall.Paywall, log logger.Logger, enableMetrics bool) *Server {
	if log == nil {
		log = logger.NoopLogger{}
	}
	s := &Server{
		router: mux.NewRouter(),
		pw:     pw,
		log:    log,
	}
	s.setupRoutes(enableMetrics)
	return s
}

func (s *Server) setupRoutes(enableMetrics bool) {
	s.router.HandleFunc("/api/articles/{articleID}/access", s.handleAccess).Methods(http.MethodPost)
	s.router.HandleFunc("/api/articles/{articleID}/payment-requirements", s.handleRequirements).Methods(http.MethodPost)
	s.router.HandleFunc("/api/articles/{articleID}/tip", s.handleTip).Methods(http.MethodPost)
	s.router.HandleFunc("/api/payments/verify/{txHash}", s.handleVerifyProof).Methods(http.MethodGet)
	s.router.HandleFunc("/api/payments/{payer}", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if enableMetrics {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	s.router.Use(s.loggingMiddleware)
}

// Handler returns the root handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(port int) error {
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("paywall server listening", map[string]any{"port": port})
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("http request", map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}
