// Package engine wires the detection core to its collaborators: structured
// logging, the in-memory alert history, database persistence, Prometheus
// counters and the optional Redis publisher. The core itself performs no
// I/O; everything observable happens here.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"deauthguard/internal/alerts"
	"deauthguard/internal/config"
	"deauthguard/internal/detector"
	"deauthguard/internal/metrics"
	"deauthguard/internal/model"
	"deauthguard/internal/storage"
)

const AlertTypeKnownAttacker = "known_attacker"

// AlertPublisher pushes alerts to an external fan-out such as Redis.
type AlertPublisher interface {
	Publish(ctx context.Context, alert model.Alert) error
}

type Engine struct {
	logger     *slog.Logger
	metrics    *metrics.Store
	collectors *metrics.Collectors
	alerts     *alerts.Store
	store      storage.Store
	publisher  AlertPublisher
	cfg        atomic.Value
	access     atomic.Value

	mu       sync.Mutex
	det      *detector.Detector
	cooldown *Cooldown
}

func NewEngine(cfg *config.Config, logger *slog.Logger, metricsStore *metrics.Store, collectors *metrics.Collectors, alertsStore *alerts.Store, store storage.Store, publisher AlertPublisher) (*Engine, error) {
	det, err := detector.New(cfg.Interface, cfg.Detection.Threshold, cfg.Detection.TimeWindow)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		logger:     logger,
		metrics:    metricsStore,
		collectors: collectors,
		alerts:     alertsStore,
		store:      store,
		publisher:  publisher,
		cooldown:   NewCooldown(),
		det:        det,
	}
	e.cfg.Store(cfg)
	e.access.Store(buildAccessControl(cfg))
	return e, nil
}

// UpdateConfig applies a new configuration. Access lists take effect
// immediately; a change to the detection parameters requires a fresh session,
// so the current one is stopped and replaced.
func (e *Engine) UpdateConfig(cfg *config.Config) error {
	old := e.config()
	e.cfg.Store(cfg)
	e.access.Store(buildAccessControl(cfg))
	if cfg.Interface != old.Interface ||
		cfg.Detection.Threshold != old.Detection.Threshold ||
		cfg.Detection.TimeWindow != old.Detection.TimeWindow {
		return e.Reset()
	}
	return nil
}

func (e *Engine) config() *config.Config {
	if v := e.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

func (e *Engine) detector() *detector.Detector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.det
}

// cooldownGate returns the current cooldown tracker. Reset swaps it under
// e.mu, so reads go through the same lock.
func (e *Engine) cooldownGate() *Cooldown {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldown
}

// Start consumes events from the ingest channel until ctx is cancelled.
func (e *Engine) Start(ctx context.Context, in <-chan model.DeauthEvent) {
	go func() {
		for {
			select {
			case ev := <-in:
				e.ProcessEvent(ev)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ProcessEvent runs one frame through the access lists and the detection
// core, then fans any alerts out to the configured consumers.
func (e *Engine) ProcessEvent(ev model.DeauthEvent) []model.Alert {
	cfg := e.config()
	ac := e.accessSet()

	if ac.IsTrusted(ev.Transmitter) {
		if e.logger != nil {
			e.logger.Debug("deauth from trusted transmitter ignored",
				"transmitter", ev.Transmitter,
				"destination", ev.Destination,
			)
		}
		return nil
	}

	alertsOut := make([]model.Alert, 0, 2)
	if ac.IsBlacklisted(ev.Transmitter) {
		if e.cooldownGate().Allow("blacklist|"+ev.Transmitter, cfg.AccessControl.AlertCooldown) {
			alert := model.Alert{
				Timestamp:   ev.Timestamp,
				Interface:   cfg.Interface,
				AlertType:   AlertTypeKnownAttacker,
				WindowCount: 0,
				TimeWindow:  cfg.Detection.TimeWindow,
				Transmitter: ev.Transmitter,
				Destination: ev.Destination,
				ReasonCode:  ev.ReasonCode,
				Context:     map[string]string{"source": ev.Source},
			}
			alertsOut = append(alertsOut, alert)
			e.emit(alert)
		}
	}

	det := e.detector()
	alert, err := det.Ingest(ev)
	if err != nil {
		if errors.Is(err, detector.ErrSessionClosed) {
			if e.logger != nil {
				e.logger.Warn("event dropped, session closed", "transmitter", ev.Transmitter)
			}
		}
		return alertsOut
	}

	if e.collectors != nil {
		e.collectors.EventsTotal.Inc()
		if ev.Broadcast() {
			e.collectors.BroadcastTotal.Inc()
		}
	}
	if e.logger != nil {
		e.logger.Debug("deauth frame",
			"transmitter", ev.Transmitter,
			"destination", ev.Destination,
			"reason", ev.ReasonCode,
			"source", ev.Source,
		)
	}

	if alert != nil {
		if ev.Source != "" {
			alert.Context = map[string]string{"source": ev.Source}
		}
		alertsOut = append(alertsOut, *alert)
		e.emit(*alert)
	}

	stats := det.Stats()
	if e.metrics != nil {
		e.metrics.Update(stats)
	}
	e.collectors.Observe(stats)
	return alertsOut
}

func (e *Engine) emit(alert model.Alert) {
	if e.alerts != nil {
		e.alerts.Add(alert)
	}
	if e.collectors != nil && alert.AlertType == detector.AlertTypeFlood {
		e.collectors.AlertsTotal.Inc()
	}
	if e.logger != nil {
		e.logger.Warn("alert triggered",
			"alert_type", alert.AlertType,
			"interface", alert.Interface,
			"transmitter", alert.Transmitter,
			"window_count", alert.WindowCount,
			"time_window", alert.TimeWindow,
		)
	}
	if e.store != nil {
		if err := e.store.SaveAlert(context.Background(), alert); err != nil && e.logger != nil {
			e.logger.Warn("alert persist failed", "err", err)
		}
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(context.Background(), alert); err != nil && e.logger != nil {
			e.logger.Warn("alert publish failed", "err", err)
		}
	}
}

// Stats returns the current session snapshot.
func (e *Engine) Stats() model.Stats {
	return e.detector().Stats()
}

// Stop terminates the current session; final statistics stay readable.
func (e *Engine) Stop() {
	e.detector().Stop()
}

// Reset stops the current session and starts a fresh one with the current
// configuration.
func (e *Engine) Reset() error {
	cfg := e.config()
	det, err := detector.New(cfg.Interface, cfg.Detection.Threshold, cfg.Detection.TimeWindow)
	if err != nil {
		return err
	}
	e.mu.Lock()
	old := e.det
	e.det = det
	e.cooldown = NewCooldown()
	e.mu.Unlock()
	old.Stop()
	return nil
}

// PersistStats writes the current snapshot to storage. Called periodically
// by the service loop.
func (e *Engine) PersistStats(ctx context.Context) {
	stats := e.Stats()
	if e.metrics != nil {
		e.metrics.Update(stats)
	}
	e.collectors.Observe(stats)
	if e.store != nil {
		if err := e.store.SaveStats(ctx, stats); err != nil && e.logger != nil {
			e.logger.Warn("stats persist failed", "err", err)
		}
	}
}

// RunStatsLoop persists stats snapshots every interval until ctx ends.
func (e *Engine) RunStatsLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.PersistStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (e *Engine) accessSet() *AccessControlSet {
	if v := e.access.Load(); v != nil {
		if ac, ok := v.(*AccessControlSet); ok {
			return ac
		}
	}
	return nil
}
