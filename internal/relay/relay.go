// File: internal/relay/relay.go
package relay

import (
	"context"
	"sync"
	"time"

	"github.com/kenerlabs/kener-telegram-relay/internal/format"
	"github.com/kenerlabs/kener-telegram-relay/internal/metrics"
	"github.com/kenerlabs/kener-telegram-relay/internal/models"
	"github.com/kenerlabs/kener-telegram-relay/internal/normalize"
	"github.com/kenerlabs/kener-telegram-relay/pkg/utils"
)

// Relayer defines the relay pipeline interface
type Relayer interface {
	// Lifecycle management
	Start(ctx context.Context) error
	Stop() error
	IsHealthy() bool

	// Process runs normalize -> format -> dispatch for one inbound event
	Process(ctx context.Context, event models.InboundEvent) error

	// Statistics
	GetStats() *RelayStats
	GetHealth() *RelayHealth
}

// Relay implements the Relayer interface. One Process call corresponds to
// one detached unit of work; failures are logged and counted, never
// propagated back to the webhook caller.
type Relay struct {
	config *RelayConfig
	logger *Logger

	mu      sync.RWMutex
	running bool

	// Components
	sender *TelegramSender

	metricsManager *metrics.Manager

	// Statistics
	stats *RelayStats
}

// RelayConfig holds relay pipeline configuration
type RelayConfig struct {
	DispatchTimeout time.Duration `json:"dispatch_timeout"`
	LogLevel        string        `json:"log_level"`
}

// RelayStats provides relay pipeline statistics
type RelayStats struct {
	TotalRelayed        uint64        `json:"total_relayed"`
	TotalFailed         uint64        `json:"total_failed"`
	AverageDispatchTime time.Duration `json:"average_dispatch_time"`
	LastError           *string       `json:"last_error,omitempty"`
	LastErrorTime       *time.Time    `json:"last_error_time,omitempty"`
}

// RelayHealth reports pipeline health
type RelayHealth struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// NewRelay creates a new relay pipeline. The metrics manager may be nil.
func NewRelay(config *RelayConfig, telegramConfig *TelegramConfig, metricsManager *metrics.Manager) *Relay {
	r := &Relay{
		config:         config,
		logger:         NewLogger(config.LogLevel),
		metricsManager: metricsManager,
		stats:          &RelayStats{},
	}

	r.sender = NewTelegramSender(telegramConfig, r.logger)

	return r
}

// Start starts the relay pipeline
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return utils.NewAppError(utils.ErrCodeInternal, "Relay already running", "")
	}

	r.logger.Info("Starting relay pipeline")
	r.running = true

	if err := r.sender.Start(ctx); err != nil {
		r.logger.Warn("Failed to start Telegram sender", map[string]interface{}{"error": err})
	}

	r.logger.Info("Relay pipeline started")
	return nil
}

// Stop stops the relay pipeline
func (r *Relay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}

	r.logger.Info("Stopping relay pipeline")
	r.running = false

	if r.sender != nil {
		r.sender.Stop()
	}

	r.logger.Info("Relay pipeline stopped")
	return nil
}

// IsHealthy returns whether the relay pipeline is healthy
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Process relays one inbound event. Normalization and formatting are total
// and cannot fail; only the outbound dispatch can, and that failure is
// recorded and returned for the caller's logging but the inbound request
// has already been acknowledged by then.
func (r *Relay) Process(ctx context.Context, event models.InboundEvent) error {
	startTime := time.Now()
	relayID, _ := utils.GenerateID()

	alert := normalize.Event(event)
	message := format.Alert(alert)

	r.logger.LogDispatchAttempt(relayID, alert.AlertName, alert.Status)

	err := r.sender.Send(ctx, relayID, message.String())

	duration := time.Since(startTime)
	r.updateStats(duration, err)

	if r.metricsManager != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		r.metricsManager.GetPrometheusMetrics().RecordDispatch(outcome, duration)
	}

	if err != nil {
		r.logger.Error("Failed to relay alert", map[string]interface{}{
			"relay_id":   relayID,
			"alert_name": alert.AlertName,
			"status":     alert.Status,
			"error":      err.Error(),
		})
		return err
	}

	r.logger.Info("Alert relayed successfully", map[string]interface{}{
		"relay_id":   relayID,
		"alert_name": alert.AlertName,
		"status":     alert.Status,
		"duration":   duration,
	})

	return nil
}

// updateStats updates relay statistics
func (r *Relay) updateStats(duration time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalRelayed++

	if err != nil {
		r.stats.TotalFailed++
		errorStr := err.Error()
		r.stats.LastError = &errorStr
		now := time.Now()
		r.stats.LastErrorTime = &now
	}

	if r.stats.TotalRelayed == 1 {
		r.stats.AverageDispatchTime = duration
	} else {
		r.stats.AverageDispatchTime = (r.stats.AverageDispatchTime + duration) / 2
	}
}

// GetStats returns a snapshot of relay statistics. Callers may read the
// snapshot while detached relay goroutines keep updating the live counters.
func (r *Relay) GetStats() *RelayStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := *r.stats
	return &snapshot
}

// GetHealth returns relay health
func (r *Relay) GetHealth() *RelayHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := &RelayHealth{
		Healthy: r.running,
	}
	if r.stats != nil && r.stats.LastError != nil {
		health.Error = *r.stats.LastError
	}
	return health
}
