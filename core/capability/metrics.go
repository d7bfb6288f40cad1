package capability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes loader counters on the default Prometheus registry.
// A nil *Metrics is valid and records nothing, which keeps tests away from
// the global registry.
type Metrics struct {
	attempts    prometheus.Counter
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
	state       prometheus.Gauge
	subscribers prometheus.Gauge
}

// NewMetrics registers the loader metrics. Call at most once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		attempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mapmanager_capability_load_attempts_total",
			Help: "Total number of SDK installation attempts",
		}),
		failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mapmanager_capability_load_failures_total",
			Help: "Total number of failed SDK loads by reason",
		}, []string{"reason"}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mapmanager_capability_load_duration_seconds",
			Help:    "Duration of SDK installation attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		state: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mapmanager_capability_state",
			Help: "Current loader state (0 not_loaded, 1 loading, 2 loaded, 3 failed)",
		}),
		subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mapmanager_capability_subscribers",
			Help: "Number of registered loader subscribers",
		}),
	}
}

func (m *Metrics) IncAttempts() {
	if m == nil {
		return
	}
	m.attempts.Inc()
}

func (m *Metrics) ObserveLoad(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}
	reason := "installation"
	if errors.Is(err, ErrIncompleteCapability) {
		reason = "incomplete"
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetState(s Status) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
