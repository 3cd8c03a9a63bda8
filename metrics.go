package fsadapter

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsadapter",
			Subsystem: "command",
			Name:      "requests_total",
			Help:      "Event socket commands executed, by result.",
		},
		[]string{"result"},
	)
	commandDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fsadapter",
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Event socket command round trip in seconds, connect to close.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	eventsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsadapter",
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Event payloads dispatched, by classified kind.",
		},
		[]string{"kind"},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsadapter",
			Name:      "failures_total",
			Help:      "Failure notifications raised, by error kind.",
		},
		[]string{"kind"},
	)
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fsadapter",
			Subsystem: "events",
			Name:      "queue_depth",
			Help:      "Event payloads received and not yet dispatched.",
		},
	)
)

// RegisterMetrics registers the collectors with the default prometheus
// registry. It is safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandRequests, commandDuration, eventsDispatched, failures, queueDepth)
	})
}

func recordCommand(err error, duration time.Duration) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	commandRequests.WithLabelValues(result).Inc()
	commandDuration.Observe(duration.Seconds())
}

func recordEvent(kind EventKind) {
	RegisterMetrics()
	eventsDispatched.WithLabelValues(kind.String()).Inc()
}

func recordFailure(err error) {
	RegisterMetrics()
	kind := "other"
	var e *Error
	if errors.As(err, &e) {
		kind = e.Kind.String()
	}
	failures.WithLabelValues(kind).Inc()
}

func recordQueueDepth(n int) {
	RegisterMetrics()
	queueDepth.Set(float64(n))
}
