package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"deauthguard/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:deauthguard.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			iface TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			window_count INTEGER NOT NULL,
			time_window_ms INTEGER NOT NULL,
			transmitter TEXT NOT NULL,
			destination TEXT NOT NULL,
			reason_code INTEGER NOT NULL,
			context_json TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_transmitter ON alerts(transmitter)`,
		`CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			iface TEXT NOT NULL,
			uptime_sec REAL NOT NULL,
			total_events INTEGER NOT NULL,
			alert_count INTEGER NOT NULL,
			broadcast_count INTEGER NOT NULL,
			distinct_transmitters INTEGER NOT NULL,
			window_count INTEGER NOT NULL,
			average_rate REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stats_iface ON stats(iface)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) SaveAlert(ctx context.Context, alert model.Alert) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (ts, iface, alert_type, window_count, time_window_ms, transmitter, destination, reason_code, context_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.Timestamp.UTC(),
		alert.Interface,
		alert.AlertType,
		alert.WindowCount,
		alert.TimeWindow.Milliseconds(),
		alert.Transmitter,
		alert.Destination,
		alert.ReasonCode,
		encodeJSON(alert.Context),
	)
	return err
}

func (s *sqliteStore) SaveStats(ctx context.Context, stats model.Stats) error {
	if s.db == nil || stats.Interface == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stats (ts, iface, uptime_sec, total_events, alert_count, broadcast_count, distinct_transmitters, window_count, average_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nowUTC(),
		stats.Interface,
		stats.Uptime.Seconds(),
		stats.TotalEvents,
		stats.AlertCount,
		stats.BroadcastCount,
		stats.DistinctTransmitters,
		stats.WindowCount,
		stats.AverageRate,
	)
	return err
}
