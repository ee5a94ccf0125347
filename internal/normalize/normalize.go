package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"deauthguard/internal/config"
	"deauthguard/internal/model"
)

// EventFields holds the raw string fields an ingest source extracted from
// one log line or message, before typing and validation.
type EventFields struct {
	Timestamp   string
	Transmitter string
	Destination string
	Reason      string
	Extras      map[string]string
	Raw         string
}

func Normalize(fields EventFields, cfg *config.Config) (model.DeauthEvent, error) {
	transmitter := MAC(fields.Transmitter)
	if transmitter == "" {
		return model.DeauthEvent{}, fmt.Errorf("invalid transmitter address: %q", fields.Transmitter)
	}
	destination := MAC(fields.Destination)
	if destination == "" {
		destination = model.BroadcastMAC
	}

	loc := time.UTC
	if cfg.Ingest.Parser.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Ingest.Parser.Timezone); err == nil {
			loc = l
		}
	}

	now := time.Now().UTC()
	ts := now
	if fields.Timestamp != "" {
		parsed, err := ParseTimestamp(fields.Timestamp, loc)
		if err != nil {
			return model.DeauthEvent{}, fmt.Errorf("parse timestamp: %w", err)
		}
		ts = parsed.UTC()
	}
	ts = ClampTimestamp(ts, now, cfg.Ingest.Parser.MaxClockSkew, cfg.Ingest.Parser.MaxFutureSkew)

	reason := 0
	if v := strings.TrimSpace(fields.Reason); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			reason = n
		}
	}

	return model.DeauthEvent{
		Timestamp:   ts,
		Transmitter: transmitter,
		Destination: destination,
		ReasonCode:  reason,
		Raw:         fields.Raw,
	}, nil
}

// MAC canonicalizes a link-layer address to lowercase colon-separated form.
// Accepts colon, dash and dot separated notations as well as bare hex.
// Returns the empty string when the input does not contain exactly six
// octets.
func MAC(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	var hex strings.Builder
	hex.Grow(12)
	for _, r := range addr {
		switch {
		case r >= '0' && r <= '9':
			hex.WriteRune(r)
		case r >= 'a' && r <= 'f':
			hex.WriteRune(r)
		case r >= 'A' && r <= 'F':
			hex.WriteRune(r - 'A' + 'a')
		case r == ':' || r == '-' || r == '.':
		default:
			return ""
		}
	}
	digits := hex.String()
	if len(digits) != 12 {
		return ""
	}
	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(digits[i : i+2])
	}
	return b.String()
}

// ClampTimestamp pulls timestamps with excessive clock skew back to the
// receive time. Zero skew limits disable clamping; the detection core never
// clamps, so synthetic-time replays bypass this by configuration.
func ClampTimestamp(ts, now time.Time, maxPast, maxFuture time.Duration) time.Time {
	if ts.IsZero() {
		return now
	}
	if maxPast > 0 && now.Sub(ts) > maxPast {
		return now
	}
	if maxFuture > 0 && ts.Sub(now) > maxFuture {
		return now
	}
	return ts
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"Jan 02 15:04:05",
	"Jan 2 15:04:05",
}

func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if isNumeric(value) {
		if ts, err := parseUnix(value); err == nil {
			return ts, nil
		}
	}
	for _, layout := range timestampLayouts {
		if layout == "Jan 02 15:04:05" || layout == "Jan 2 15:04:05" {
			// Syslog timestamps carry no year.
			if t, err := time.ParseInLocation(layout, value, loc); err == nil {
				now := time.Now().In(loc)
				return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
			}
			continue
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

func isNumeric(value string) bool {
	for _, ch := range value {
		if (ch < '0' || ch > '9') && ch != '.' {
			return false
		}
	}
	return len(value) > 0
}

func parseUnix(value string) (time.Time, error) {
	if i := strings.IndexByte(value, '.'); i >= 0 {
		// Fractional unix seconds, as produced by capture tooling.
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, int64(f*float64(time.Second))).UTC(), nil
	}
	if len(value) >= 13 {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
