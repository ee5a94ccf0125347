package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"deauthguard/internal/alerts"
	"deauthguard/internal/config"
	"deauthguard/internal/detector"
	"deauthguard/internal/metrics"
	"deauthguard/internal/model"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Interface = "wlan0"
	cfg.Detection.Threshold = 10
	cfg.Detection.TimeWindow = 5 * time.Second
	cfg.AccessControl.AlertCooldown = 0
	return cfg
}

func newEngineForTest(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	collectors := metrics.NewCollectors(prometheus.NewRegistry())
	eng, err := NewEngine(cfg, nil, metrics.NewStore(), collectors, alerts.NewStore(100), nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func floodEvent(base time.Time, offset time.Duration, mac string) model.DeauthEvent {
	return model.DeauthEvent{
		Timestamp:   base.Add(offset),
		Transmitter: mac,
		Destination: model.BroadcastMAC,
		ReasonCode:  7,
		Source:      "test",
	}
}

func TestFloodAlert(t *testing.T) {
	eng := newEngineForTest(t, testConfig())
	base := time.Now().UTC()
	for i := 0; i < 9; i++ {
		if out := eng.ProcessEvent(floodEvent(base, time.Duration(i)*100*time.Millisecond, "02:00:00:00:00:01")); len(out) > 0 {
			t.Fatalf("unexpected alert on event %d", i)
		}
	}
	out := eng.ProcessEvent(floodEvent(base, 900*time.Millisecond, "02:00:00:00:00:01"))
	if len(out) != 1 {
		t.Fatalf("expected one alert, got %d", len(out))
	}
	if out[0].AlertType != detector.AlertTypeFlood {
		t.Fatalf("alert type: %s", out[0].AlertType)
	}
	if out[0].WindowCount != 10 {
		t.Fatalf("window count: %d", out[0].WindowCount)
	}
}

func TestNormalTrafficNoAlert(t *testing.T) {
	eng := newEngineForTest(t, testConfig())
	base := time.Now().UTC().Add(-time.Minute)
	for i := 0; i < 8; i++ {
		out := eng.ProcessEvent(floodEvent(base, time.Duration(i)*2*time.Second, "02:00:00:00:00:01"))
		if len(out) > 0 {
			t.Fatalf("unexpected alert for low-rate traffic")
		}
	}
}

func TestTrustedTransmitterSuppressed(t *testing.T) {
	cfg := testConfig()
	cfg.AccessControl.Enabled = true
	cfg.AccessControl.TrustedTransmitters = []string{"AA:BB:CC:DD:EE:FF"}
	eng := newEngineForTest(t, cfg)
	base := time.Now().UTC()
	for i := 0; i < 20; i++ {
		if out := eng.ProcessEvent(floodEvent(base, time.Duration(i)*10*time.Millisecond, "aa:bb:cc:dd:ee:ff")); len(out) > 0 {
			t.Fatalf("trusted transmitter raised alert")
		}
	}
	if got := eng.Stats().TotalEvents; got != 0 {
		t.Fatalf("trusted events reached the core: %d", got)
	}
}

func TestBlacklistedTransmitterAlert(t *testing.T) {
	cfg := testConfig()
	cfg.AccessControl.Enabled = true
	cfg.AccessControl.Blacklist = []string{"DE:AD:BE:EF:00:01"}
	eng := newEngineForTest(t, cfg)
	out := eng.ProcessEvent(floodEvent(time.Now().UTC(), 0, "de:ad:be:ef:00:01"))
	if len(out) != 1 || out[0].AlertType != AlertTypeKnownAttacker {
		t.Fatalf("expected known_attacker alert, got %+v", out)
	}
	// The frame still counts toward the flood window.
	if got := eng.Stats().TotalEvents; got != 1 {
		t.Fatalf("blacklisted frame skipped the core: %d", got)
	}
}

func TestBlacklistCooldown(t *testing.T) {
	cfg := testConfig()
	cfg.AccessControl.Enabled = true
	cfg.AccessControl.Blacklist = []string{"de:ad:be:ef:00:01"}
	cfg.AccessControl.AlertCooldown = time.Minute
	eng := newEngineForTest(t, cfg)
	base := time.Now().UTC()
	first := eng.ProcessEvent(floodEvent(base, 0, "de:ad:be:ef:00:01"))
	second := eng.ProcessEvent(floodEvent(base, 10*time.Millisecond, "de:ad:be:ef:00:01"))
	if len(first) != 1 {
		t.Fatalf("expected alert on first blacklisted frame")
	}
	if len(second) != 0 {
		t.Fatalf("cooldown did not suppress repeat blacklist alert")
	}
}

func TestResetStartsFreshSession(t *testing.T) {
	eng := newEngineForTest(t, testConfig())
	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		eng.ProcessEvent(floodEvent(base, time.Duration(i)*10*time.Millisecond, "02:00:00:00:00:01"))
	}
	if eng.Stats().TotalEvents != 10 {
		t.Fatalf("precondition: totals wrong")
	}
	if err := eng.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stats := eng.Stats()
	if stats.TotalEvents != 0 || stats.AlertCount != 0 || stats.WindowCount != 0 {
		t.Fatalf("reset did not clear session: %+v", stats)
	}
}

func TestStopDropsFurtherEvents(t *testing.T) {
	eng := newEngineForTest(t, testConfig())
	base := time.Now().UTC()
	eng.ProcessEvent(floodEvent(base, 0, "02:00:00:00:00:01"))
	eng.Stop()
	if out := eng.ProcessEvent(floodEvent(base, time.Second, "02:00:00:00:00:02")); len(out) != 0 {
		t.Fatalf("stopped engine produced alerts")
	}
	if got := eng.Stats().TotalEvents; got != 1 {
		t.Fatalf("stopped engine mutated counters: %d", got)
	}
}

func TestUpdateConfigRestartsOnDetectionChange(t *testing.T) {
	eng := newEngineForTest(t, testConfig())
	base := time.Now().UTC()
	eng.ProcessEvent(floodEvent(base, 0, "02:00:00:00:00:01"))

	next := testConfig()
	next.Detection.Threshold = 3
	if err := eng.UpdateConfig(next); err != nil {
		t.Fatalf("update config: %v", err)
	}
	if got := eng.Stats().TotalEvents; got != 0 {
		t.Fatalf("expected fresh session after threshold change, totals=%d", got)
	}
	for i := 0; i < 3; i++ {
		out := eng.ProcessEvent(floodEvent(base.Add(time.Second), time.Duration(i)*10*time.Millisecond, "02:00:00:00:00:01"))
		if i == 2 && len(out) != 1 {
			t.Fatalf("new threshold not applied")
		}
	}
}

func TestResetConcurrentWithProcessEvent(t *testing.T) {
	cfg := testConfig()
	cfg.AccessControl.Enabled = true
	cfg.AccessControl.Blacklist = []string{"de:ad:be:ef:00:01"}
	cfg.AccessControl.AlertCooldown = time.Minute
	eng := newEngineForTest(t, cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		base := time.Now().UTC()
		for i := 0; i < 500; i++ {
			eng.ProcessEvent(floodEvent(base, time.Duration(i)*time.Millisecond, "de:ad:be:ef:00:01"))
		}
	}()
	for i := 0; i < 100; i++ {
		if err := eng.Reset(); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}
	<-done
}

type failingStore struct {
	saveErr error
}

func (f *failingStore) Init(ctx context.Context) error { return nil }

func (f *failingStore) Close() error { return nil }

func (f *failingStore) SaveStats(ctx context.Context, stats model.Stats) error { return nil }
func (f *failingStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	return f.saveErr
}

func TestAlertPersistFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	cfg := testConfig()
	cfg.Detection.Threshold = 1
	collectors := metrics.NewCollectors(prometheus.NewRegistry())
	eng, err := NewEngine(cfg, logger, metrics.NewStore(), collectors, alerts.NewStore(100),
		&failingStore{saveErr: errors.New("disk full")}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out := eng.ProcessEvent(floodEvent(time.Now().UTC(), 0, "02:00:00:00:00:01"))
	if len(out) != 1 {
		t.Fatalf("expected alert despite storage failure, got %d", len(out))
	}
	if !strings.Contains(buf.String(), "alert persist failed") {
		t.Fatalf("storage failure not logged: %s", buf.String())
	}
}
