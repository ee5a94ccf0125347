package ingest

import "testing"

func TestParsePlainKV(t *testing.T) {
	p := NewParser()
	line := "2026-02-23 12:34:56 wlan0 src=aa:bb:cc:dd:ee:ff dst=ff:ff:ff:ff:ff:ff reason=7"
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Transmitter != "aa:bb:cc:dd:ee:ff" {
		t.Fatalf("transmitter: %s", fields.Transmitter)
	}
	if fields.Destination != "ff:ff:ff:ff:ff:ff" {
		t.Fatalf("destination: %s", fields.Destination)
	}
	if fields.Reason != "7" {
		t.Fatalf("reason: %s", fields.Reason)
	}
	if fields.Timestamp == "" {
		t.Fatalf("timestamp missing")
	}
}

func TestParsePlainHostapdStyle(t *testing.T) {
	p := NewParser()
	line := "Feb 23 12:34:56 ap01 hostapd: wlan0: STA aa:bb:cc:dd:ee:ff deauthenticated"
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Transmitter != "aa:bb:cc:dd:ee:ff" {
		t.Fatalf("transmitter fallback failed: %s", fields.Transmitter)
	}
	if fields.Timestamp == "" {
		t.Fatalf("syslog timestamp missing")
	}
}

func TestParseCSV(t *testing.T) {
	p := NewParser()
	if fields, _ := p.ParseLine("timestamp,transmitter,destination,reason"); fields != nil {
		t.Fatalf("expected header to return nil")
	}
	fields, err := p.ParseLine("2026-02-23T12:34:56Z,aa:bb:cc:dd:ee:ff,ff:ff:ff:ff:ff:ff,7")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Transmitter != "aa:bb:cc:dd:ee:ff" || fields.Reason != "7" {
		t.Fatalf("csv parse mismatch: %+v", fields)
	}
}

func TestParseJSON(t *testing.T) {
	p := NewParser()
	line := `{"timestamp":"2026-02-23T12:34:56Z","src":"aa:bb:cc:dd:ee:ff","dst":"ff:ff:ff:ff:ff:ff","reason":4}`
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Transmitter != "aa:bb:cc:dd:ee:ff" || fields.Reason != "4" {
		t.Fatalf("json parse mismatch: %+v", fields)
	}
}

func TestParseBlankLine(t *testing.T) {
	p := NewParser()
	if fields, err := p.ParseLine("   "); err != nil || fields != nil {
		t.Fatalf("blank line should yield nothing")
	}
}
