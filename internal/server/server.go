// File: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/kenerlabs/kener-telegram-relay/internal/metrics"
	"github.com/kenerlabs/kener-telegram-relay/internal/models"
	"github.com/kenerlabs/kener-telegram-relay/internal/relay"
	"github.com/kenerlabs/kener-telegram-relay/pkg/utils"
)

// TokenHeader is the inbound shared-secret header set by Kener.
const TokenHeader = "x-kener-token"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          int           `json:"port"`
	Host          string        `json:"host"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	EnableMetrics bool          `json:"enable_metrics"`
	MaxBodyBytes  int64         `json:"max_body_bytes"`
	WebhookSecret string        `json:"-"`
}

// HTTPServer represents the HTTP server
type HTTPServer struct {
	config         *ServerConfig
	server         *http.Server
	router         *mux.Router
	relay          relay.Relayer
	metricsManager *metrics.Manager
	logger         *logrus.Logger
}

// webhookResponse is the acknowledgment body for POST /
type webhookResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(config *ServerConfig, relayer relay.Relayer, metricsManager *metrics.Manager) (*HTTPServer, error) {
	server := &HTTPServer{
		config:         config,
		relay:          relayer,
		metricsManager: metricsManager,
		logger:         utils.GetLogger(),
	}

	// Setup router
	server.setupRouter()

	// Create HTTP server
	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server, nil
}

// setupRouter sets up the HTTP routes
func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()

	// Middleware
	s.router.Use(s.loggingMiddleware)
	if s.metricsManager != nil {
		s.router.Use(s.metricsMiddleware)
	}

	// Webhook surface
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/", s.webhookHandler).Methods("POST")

	// Metrics endpoint
	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}
}

// Handler returns the configured router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"address":         s.server.Addr,
		"metrics_enabled": s.config.EnableMetrics,
		"auth_enabled":    s.config.WebhookSecret != "",
	}).Info("Starting HTTP server")

	// Immediately update system and component metrics so they appear on first scrape
	if s.metricsManager != nil {
		s.metricsManager.UpdateSystemMetrics()
		if s.relay != nil {
			s.metricsManager.UpdateRelayHealth(s.relay.GetHealth().Healthy)
		}
		go s.systemMetricsUpdater()
	}

	// Create a channel to receive startup errors
	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithField("error", err).Error("HTTP server error")
			errChan <- err
		}
	}()

	// Give the server a moment to start and check for immediate binding errors
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// systemMetricsUpdater updates system metrics periodically
func (s *HTTPServer) systemMetricsUpdater() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.metricsManager.UpdateSystemMetrics()

		if s.relay != nil {
			s.metricsManager.UpdateRelayHealth(s.relay.GetHealth().Healthy)
		}
	}
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Handlers

// healthHandler is a pure liveness signal with no dependency checks
func (s *HTTPServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// webhookHandler receives a Kener webhook event. The request is
// acknowledged before the pipeline runs: dispatch happens in a detached
// goroutine whose outcome never reaches this response.
func (s *HTTPServer) webhookHandler(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(TokenHeader)
	if !utils.SecureCompare(token, s.config.WebhookSecret) {
		if s.metricsManager != nil {
			s.metricsManager.GetPrometheusMetrics().RecordAuthFailure()
			s.metricsManager.GetPrometheusMetrics().RecordWebhookReceived("unauthorized")
		}
		s.logger.WithField("remote_ip", r.RemoteAddr).Warn("Webhook rejected: invalid token")
		s.writeJSON(w, http.StatusUnauthorized, webhookResponse{OK: false, Error: "invalid token"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	var event models.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		// Malformed payloads are still acknowledged; every field the
		// normalizer cares about has a default.
		s.logger.WithField("error", err.Error()).Debug("Webhook payload not decodable, relaying defaults")
		event = models.InboundEvent{}
	}

	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().RecordWebhookReceived("accepted")
	}

	s.writeJSON(w, http.StatusOK, webhookResponse{OK: true})

	// Detached unit of work; the relay logs and counts its own failures.
	go s.relay.Process(context.Background(), event)
}

// Utility Methods

// writeJSON writes a JSON response
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithField("error", err).Error("Failed to encode JSON response")
	}
}
