// Package detector implements the deauth-flood detection core: a single
// monitoring session that counts deauthentication frames over a trailing
// time window and signals an alert whenever the in-window count reaches the
// configured threshold.
package detector

import (
	"errors"
	"sync"
	"time"

	"deauthguard/internal/model"
)

const AlertTypeFlood = "deauth_flood"

var (
	ErrInvalidConfiguration = errors.New("detector: threshold and time window must be positive")
	ErrSessionClosed        = errors.New("detector: session closed")
)

// Detector is the stateful detection engine for one monitoring session.
// Exactly one producer may call Ingest; Stats is safe to call from any
// goroutine while ingestion is in progress.
type Detector struct {
	iface     string
	threshold int
	window    time.Duration

	mu           sync.Mutex
	recent       *timeWindow
	transmitters map[string]struct{}
	totalEvents  uint64
	alertCount   uint64
	broadcasts   uint64
	sessionStart time.Time
	stopped      bool
}

// New validates the session configuration and returns a running detector.
// The interface identifier is opaque: it is echoed on alerts and stats but
// never interpreted.
func New(iface string, threshold int, window time.Duration) (*Detector, error) {
	if threshold <= 0 || window <= 0 {
		return nil, ErrInvalidConfiguration
	}
	return &Detector{
		iface:        iface,
		threshold:    threshold,
		window:       window,
		recent:       newTimeWindow(),
		transmitters: make(map[string]struct{}),
		sessionStart: time.Now().UTC(),
	}, nil
}

// Ingest processes one deauthentication frame and returns a non-nil alert
// when the in-window count is at or above the threshold. The alert condition
// re-fires on every event while the flood lasts; callers wanting a single
// notification per episode must debounce themselves.
//
// Eviction is keyed on the event's own timestamp, never the wall clock, so
// the detector can be driven by live capture or by synthetic time. Callers
// must feed events in non-decreasing timestamp order for the window to
// reflect true recency; disordered input is processed without error but the
// window contents are then only as accurate as the ordering.
func (d *Detector) Ingest(ev model.DeauthEvent) (*model.Alert, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil, ErrSessionClosed
	}

	d.totalEvents++
	d.transmitters[ev.Transmitter] = struct{}{}
	if ev.Broadcast() {
		d.broadcasts++
	}
	d.recent.Add(ev.Timestamp)
	d.recent.Evict(ev.Timestamp.Add(-d.window))

	count := d.recent.Len()
	if count < d.threshold {
		return nil, nil
	}
	d.alertCount++
	return &model.Alert{
		Timestamp:   ev.Timestamp,
		Interface:   d.iface,
		AlertType:   AlertTypeFlood,
		WindowCount: count,
		TimeWindow:  d.window,
		Transmitter: ev.Transmitter,
		Destination: ev.Destination,
		ReasonCode:  ev.ReasonCode,
	}, nil
}

// Stats returns a consistent snapshot of the session counters. Valid in any
// state, including after Stop.
func (d *Detector) Stats() model.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	uptime := time.Since(d.sessionStart)
	rate := 0.0
	if uptime > 0 {
		rate = float64(d.totalEvents) / uptime.Seconds()
	}
	return model.Stats{
		Interface:            d.iface,
		SessionStart:         d.sessionStart,
		Uptime:               uptime,
		TotalEvents:          d.totalEvents,
		AlertCount:           d.alertCount,
		BroadcastCount:       d.broadcasts,
		DistinctTransmitters: len(d.transmitters),
		WindowCount:          d.recent.Len(),
		AverageRate:          rate,
	}
}

// Stop terminates the session. Further Ingest calls fail with
// ErrSessionClosed; accumulated counters stay readable. Stopping twice is a
// no-op.
func (d *Detector) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Stopped reports whether the session has been terminated.
func (d *Detector) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Threshold returns the configured alert threshold.
func (d *Detector) Threshold() int { return d.threshold }

// Window returns the configured trailing time window.
func (d *Detector) Window() time.Duration { return d.window }

// Interface returns the opaque interface identifier for this session.
func (d *Detector) Interface() string { return d.iface }
