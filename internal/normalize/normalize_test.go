package normalize

import (
	"testing"
	"time"

	"deauthguard/internal/config"
	"deauthguard/internal/model"
)

func TestMAC(t *testing.T) {
	cases := map[string]string{
		"AA:BB:CC:DD:EE:FF":    "aa:bb:cc:dd:ee:ff",
		"aa-bb-cc-dd-ee-ff":    "aa:bb:cc:dd:ee:ff",
		"aabb.ccdd.eeff":       "aa:bb:cc:dd:ee:ff",
		"aabbccddeeff":         "aa:bb:cc:dd:ee:ff",
		" FF:FF:FF:FF:FF:FF ":  "ff:ff:ff:ff:ff:ff",
		"":                     "",
		"not a mac":            "",
		"aa:bb:cc:dd:ee":       "",
		"aa:bb:cc:dd:ee:ff:00": "",
	}
	for in, want := range cases {
		if got := MAC(in); got != want {
			t.Errorf("MAC(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ingest.Parser.MaxFutureSkew = 0
	fields := EventFields{
		Timestamp:   "2026-02-23T12:34:56Z",
		Transmitter: "AA:BB:CC:DD:EE:FF",
		Destination: "",
		Reason:      "7",
		Raw:         "test line",
	}
	ev, err := Normalize(fields, cfg)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ev.Transmitter != "aa:bb:cc:dd:ee:ff" {
		t.Fatalf("transmitter: %s", ev.Transmitter)
	}
	if ev.Destination != model.BroadcastMAC {
		t.Fatalf("missing destination should default to broadcast, got %s", ev.Destination)
	}
	if ev.ReasonCode != 7 {
		t.Fatalf("reason: %d", ev.ReasonCode)
	}
	if !ev.Broadcast() {
		t.Fatalf("broadcast flag")
	}
	want := time.Date(2026, 2, 23, 12, 34, 56, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Fatalf("timestamp: %s", ev.Timestamp)
	}
}

func TestNormalizeRejectsBadTransmitter(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := Normalize(EventFields{Transmitter: "garbage"}, cfg); err == nil {
		t.Fatalf("expected error for invalid transmitter")
	}
}

func TestParseTimestampUnix(t *testing.T) {
	ts, err := ParseTimestamp("1767225600", time.UTC)
	if err != nil {
		t.Fatalf("unix seconds: %v", err)
	}
	if ts.Unix() != 1767225600 {
		t.Fatalf("unix seconds value: %d", ts.Unix())
	}
	ts, err = ParseTimestamp("1767225600500", time.UTC)
	if err != nil {
		t.Fatalf("unix millis: %v", err)
	}
	if ts.UnixMilli() != 1767225600500 {
		t.Fatalf("unix millis value: %d", ts.UnixMilli())
	}
	ts, err = ParseTimestamp("1767225600.25", time.UTC)
	if err != nil {
		t.Fatalf("fractional unix: %v", err)
	}
	if ts.UnixMilli() != 1767225600250 {
		t.Fatalf("fractional unix value: %d", ts.UnixMilli())
	}
}

func TestClampTimestamp(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	if got := ClampTimestamp(future, now, 0, 2*time.Second); !got.Equal(now) {
		t.Fatalf("future timestamp not clamped")
	}
	past := now.Add(-time.Hour)
	if got := ClampTimestamp(past, now, 0, 0); !got.Equal(past) {
		t.Fatalf("clamping disabled but timestamp changed")
	}
	if got := ClampTimestamp(time.Time{}, now, 0, 0); !got.Equal(now) {
		t.Fatalf("zero timestamp should become now")
	}
}
