package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deauthguard/internal/alerts"
	"deauthguard/internal/config"
	"deauthguard/internal/metrics"
	"deauthguard/internal/model"
	"deauthguard/internal/normalize"
)

type EngineControl interface {
	Reset() error
	Stop()
	UpdateConfig(cfg *config.Config) error
	Stats() model.Stats
}

type Server struct {
	cfg     *config.Manager
	metrics *metrics.Store
	alerts  *alerts.Store
	engine  EngineControl
	logger  *slog.Logger
	version string
}

type statusResponse struct {
	Status        string                     `json:"status"`
	Time          string                     `json:"time"`
	Version       string                     `json:"version"`
	ConfigPath    string                     `json:"config_path"`
	Interface     string                     `json:"interface"`
	AccessControl config.AccessControlConfig `json:"access_control"`
	Ingest        ingestStatus               `json:"ingest"`
	Detection     detectionStatus            `json:"detection"`
}

type ingestStatus struct {
	REST      bool `json:"rest"`
	Syslog    bool `json:"syslog"`
	TCPStream bool `json:"tcp_stream"`
	FileTail  bool `json:"file_tail"`
	Kafka     bool `json:"kafka"`
}

type detectionStatus struct {
	Threshold  int    `json:"threshold"`
	TimeWindow string `json:"time_window"`
}

func Start(ctx context.Context, cfg *config.Manager, metricsStore *metrics.Store, alertsStore *alerts.Store, engine EngineControl, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:     cfg,
		metrics: metricsStore,
		alerts:  alertsStore,
		engine:  engine,
		logger:  logger,
		version: version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/stats", server.handleStats)
	mux.HandleFunc("/stats/", server.handleStats)
	mux.HandleFunc("/alerts", server.handleAlerts)
	mux.HandleFunc("/config/access_control", server.handleAccessControl)
	mux.HandleFunc("/admin/clear", server.handleClear)
	mux.HandleFunc("/admin/restart", server.handleRestart)
	mux.HandleFunc("/admin/stop", server.handleStop)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	resp := statusResponse{
		Status:        "ok",
		Time:          time.Now().UTC().Format(time.RFC3339Nano),
		Version:       s.version,
		ConfigPath:    s.cfg.Path(),
		Interface:     cfg.Interface,
		AccessControl: cfg.AccessControl,
		Ingest: ingestStatus{
			REST:      cfg.Ingest.REST.Enabled,
			Syslog:    cfg.Ingest.Syslog.Enabled,
			TCPStream: cfg.Ingest.TCPStream.Enabled,
			FileTail:  cfg.Ingest.FileTail.Enabled,
			Kafka:     cfg.Ingest.Kafka.Enabled,
		},
		Detection: detectionStatus{
			Threshold:  cfg.Detection.Threshold,
			TimeWindow: cfg.Detection.TimeWindow.String(),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/stats")
	path = strings.TrimPrefix(path, "/")
	if path != "" {
		stats, updated, ok := s.metrics.Get(path)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"interface":  path,
			"updated_at": updated.Format(time.RFC3339Nano),
			"stats":      stats,
		})
		return
	}
	// Live snapshot straight from the engine.
	if s.engine != nil {
		writeJSON(w, http.StatusOK, s.engine.Stats())
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.GetAll())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	sinceStr := r.URL.Query().Get("since")
	var list []model.Alert
	if sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		list = s.alerts.Since(ts)
	} else {
		list = s.alerts.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": list,
		"count":  len(list),
	})
}

func (s *Server) handleAccessControl(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg := s.cfg.Get()
		writeJSON(w, http.StatusOK, map[string]any{
			"access_control": cfg.AccessControl,
		})
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var ac config.AccessControlConfig
		if err := json.Unmarshal(body, &ac); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ac.TrustedTransmitters = sanitizeMACList(ac.TrustedTransmitters)
		ac.Blacklist = sanitizeMACList(ac.Blacklist)
		current := s.cfg.Get()
		next := *current
		next.AccessControl = ac
		if err := s.cfg.Update(&next); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if s.engine != nil {
			if err := s.engine.UpdateConfig(&next); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	var req struct {
		Target string `json:"target"`
	}
	_ = json.Unmarshal(body, &req)
	target := strings.ToLower(strings.TrimSpace(req.Target))
	if target == "" {
		target = "all"
	}
	switch target {
	case "all":
		if s.metrics != nil {
			s.metrics.Clear()
		}
		if s.alerts != nil {
			s.alerts.Clear()
		}
	case "alerts":
		if s.alerts != nil {
			s.alerts.Clear()
		}
	case "stats":
		if s.metrics != nil {
			s.metrics.Clear()
		}
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.engine != nil {
		if err := s.engine.Reset(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	if s.metrics != nil {
		s.metrics.Clear()
	}
	if s.alerts != nil {
		s.alerts.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleStop closes the detection session. Events arriving afterwards are
// dropped until /admin/restart opens a fresh one.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.engine != nil {
		s.engine.Stop()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func sanitizeMACList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		mac := normalize.MAC(v)
		if mac == "" {
			continue
		}
		out = append(out, mac)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
