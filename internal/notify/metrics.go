package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
)

type Metrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the dispatcher collectors on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindnet",
			Subsystem: "notifications",
			Name:      "attempts_total",
			Help:      "Emergency notification attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindnet",
			Subsystem: "notifications",
			Name:      "attempt_duration_seconds",
			Help:      "Time spent in one provider call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
}

func (metrics *Metrics) observe(result ChannelResult) {
	if metrics == nil {
		return
	}
	outcome := outcomeDelivered
	if !result.Delivered {
		outcome = outcomeFailed
	}
	metrics.attempts.WithLabelValues(string(result.Channel), outcome).Inc()
	metrics.duration.WithLabelValues(string(result.Channel)).Observe(result.Duration.Seconds())
}
