package alerts

import (
	"testing"
	"time"

	"deauthguard/internal/model"
)

func alertAt(ts time.Time, mac string) model.Alert {
	return model.Alert{Timestamp: ts, Interface: "wlan0", AlertType: "deauth_flood", Transmitter: mac}
}

func TestStoreBounded(t *testing.T) {
	s := NewStore(3)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Add(alertAt(base.Add(time.Duration(i)*time.Second), "02:00:00:00:00:01"))
	}
	if s.Len() != 3 {
		t.Fatalf("store grew past limit: %d", s.Len())
	}
	list := s.List(0)
	if len(list) != 3 {
		t.Fatalf("list length: %d", len(list))
	}
	// The oldest two were dropped.
	if !list[0].Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("wrong eviction order: %s", list[0].Timestamp)
	}
}

func TestStoreSince(t *testing.T) {
	s := NewStore(10)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Add(alertAt(base.Add(time.Duration(i)*time.Second), "02:00:00:00:00:01"))
	}
	got := s.Since(base.Add(3 * time.Second))
	if len(got) != 2 {
		t.Fatalf("since: got %d alerts, want 2", len(got))
	}
}

func TestStoreListLimit(t *testing.T) {
	s := NewStore(10)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Add(alertAt(base.Add(time.Duration(i)*time.Second), "02:00:00:00:00:01"))
	}
	got := s.List(2)
	if len(got) != 2 {
		t.Fatalf("limited list: got %d", len(got))
	}
	if !got[1].Timestamp.Equal(base.Add(4 * time.Second)) {
		t.Fatalf("limit should keep newest entries")
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear failed")
	}
}
