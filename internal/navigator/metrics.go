package navigator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Search outcomes used as the "result" label.
const (
	ResultOK          = "ok"
	ResultNoPath      = "no_path"
	ResultUnsupported = "unsupported"
	ResultCancelled   = "cancelled"
	ResultError       = "error"
)

// Metrics records planning statistics.
type Metrics struct {
	searches  *prometheus.CounterVec
	duration  prometheus.Histogram
	expanded  prometheus.Histogram
	waypoints prometheus.Histogram
}

// NewMetrics creates the planner metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nav_searches_total",
			Help: "Path searches by result",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nav_search_duration_seconds",
			Help:    "Path search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),
		expanded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nav_search_expanded_nodes",
			Help:    "Nodes expanded per successful search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		waypoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nav_route_waypoints",
			Help:    "Waypoints per planned route",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.searches, m.duration, m.expanded, m.waypoints)
	}
	return m
}

func (m *Metrics) observe(result string, seconds float64, route *Route) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
	if route != nil {
		m.expanded.Observe(float64(route.Expanded))
		m.waypoints.Observe(float64(len(route.Path)))
	}
}
