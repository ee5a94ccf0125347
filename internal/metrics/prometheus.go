package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"deauthguard/internal/model"
)

// Collectors exposes detection counters to Prometheus. Register against a
// dedicated registry in tests to avoid duplicate registration.
type Collectors struct {
	EventsTotal    prometheus.Counter
	AlertsTotal    prometheus.Counter
	BroadcastTotal prometheus.Counter

	windowSize  prometheus.Gauge
	distinct    prometheus.Gauge
	averageRate prometheus.Gauge
}

func NewCollectors(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collectors{
		EventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "deauth_events_total",
			Help: "Total deauthentication frames ingested",
		}),
		AlertsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "deauth_alerts_total",
			Help: "Total flood alerts raised",
		}),
		BroadcastTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "deauth_broadcast_frames_total",
			Help: "Total broadcast-destination deauth frames ingested",
		}),
		windowSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deauth_window_frames",
			Help: "Frames currently inside the detection window",
		}),
		distinct: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deauth_distinct_transmitters",
			Help: "Distinct transmitter addresses seen this session",
		}),
		averageRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deauth_average_rate",
			Help: "Average deauth frames per second since session start",
		}),
	}
}

func (c *Collectors) Observe(stats model.Stats) {
	if c == nil {
		return
	}
	c.windowSize.Set(float64(stats.WindowCount))
	c.distinct.Set(float64(stats.DistinctTransmitters))
	c.averageRate.Set(stats.AverageRate)
}
