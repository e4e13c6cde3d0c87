package connector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "browserconnector"

// StatusError is the status label used for exchanges in which the handler returned an error.
const StatusError = "error"

// Metrics counts and times the exchanges made by one or more Connectors.
type Metrics struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. If reg is nil, they are not
// registered anywhere, which is useful when a test only wants to read them back.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exchanges_total",
			Help:      "Number of request/response exchanges, by request method and response status.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "exchange_duration_seconds",
			Help:      "Time spent in the application handler, by request method.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"method"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.exchanges, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Exchanges returns the exchange counter, labeled by method and status.
func (m *Metrics) Exchanges() *prometheus.CounterVec { return m.exchanges }

// Duration returns the handler duration histogram, labeled by method.
func (m *Metrics) Duration() *prometheus.HistogramVec { return m.duration }

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := StatusError
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.exchanges.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
