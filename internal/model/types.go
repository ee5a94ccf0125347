package model

import "time"

// BroadcastMAC is the all-stations destination used by broadcast deauth floods.
const BroadcastMAC = "ff:ff:ff:ff:ff:ff"

// DeauthEvent is one observed 802.11 deauthentication frame, already parsed
// by an ingest source. Only derived state is retained after ingestion.
type DeauthEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Transmitter string    `json:"transmitter"`
	Destination string    `json:"destination"`
	ReasonCode  int       `json:"reason_code"`
	Source      string    `json:"source,omitempty"`
	Raw         string    `json:"raw,omitempty"`
}

// Broadcast reports whether the frame was addressed to all stations.
func (e DeauthEvent) Broadcast() bool {
	return e.Destination == BroadcastMAC
}

type Alert struct {
	Timestamp   time.Time         `json:"timestamp"`
	Interface   string            `json:"interface"`
	AlertType   string            `json:"alert_type"`
	WindowCount int               `json:"window_count"`
	TimeWindow  time.Duration     `json:"time_window"`
	Transmitter string            `json:"transmitter"`
	Destination string            `json:"destination"`
	ReasonCode  int               `json:"reason_code"`
	Context     map[string]string `json:"context,omitempty"`
}

// Stats is a point-in-time snapshot of a monitoring session.
type Stats struct {
	Interface            string        `json:"interface"`
	SessionStart         time.Time     `json:"session_start"`
	Uptime               time.Duration `json:"uptime"`
	TotalEvents          uint64        `json:"total_events"`
	AlertCount           uint64        `json:"alert_count"`
	BroadcastCount       uint64        `json:"broadcast_count"`
	DistinctTransmitters int           `json:"distinct_transmitters"`
	WindowCount          int           `json:"window_count"`
	AverageRate          float64       `json:"average_rate"`
}
