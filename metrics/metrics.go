package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for dispatched requests.
const (
	OutcomeOK         = "ok"
	OutcomeTransport  = "transport"
	OutcomeHTTPStatus = "http_status"
	OutcomeDecode     = "decode"
)

//
// Metrics holds the collectors that the dispatcher reports into. A nil *Metrics is valid and
// records nothing, so clients that were not given one do not need to check.
//
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kucoin",
			Name:      "requests_total",
			Help:      "Signed requests dispatched to the exchange, by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kucoin",
			Name:      "request_duration_seconds",
			Help:      "Round trip latency of signed requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (s *Metrics) Observe(method string, outcome string, elapsed time.Duration) {
	if s == nil {
		return
	}

	s.requests.WithLabelValues(method, outcome).Inc()
	s.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Requests exposes the request counter, mostly for tests.
func (s *Metrics) Requests() *prometheus.CounterVec {
	return s.requests
}
