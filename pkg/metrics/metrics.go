package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

const Subsystem = "sagepay"

// HistogramBuckets are in milliseconds. SagePay round trips sit well under a
// second, the tail covers the 30s client timeout.
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000, 3000, 5000, 10000,
	20000, 30000, 45000,
}

// Metric describes a collector to be created by NewMetric.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "counter":
		return prometheus.NewCounter(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "histogram_vec":
		return prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
			m.Args,
		)
	case "summary_vec":
		return prometheus.NewSummaryVec(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	}
	return nil
}

var registrationTotal = &Metric{
	ID:          "regCnt",
	Name:        "registration_total",
	Description: "Payment registrations sent to SagePay, partitioned by result.",
	Type:        "counter_vec",
	Args:        []string{"result"},
}

var registrationDur = &Metric{
	ID:          "regDur",
	Name:        "registration_dur_ms",
	Description: "SagePay registration round trip in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"result"},
}

var notificationTotal = &Metric{
	ID:          "notifCnt",
	Name:        "notification_total",
	Description: "Inbound SagePay notifications, partitioned by verification outcome and status.",
	Type:        "counter_vec",
	Args:        []string{"outcome", "status"},
}

var finalizeTotal = &Metric{
	ID:          "finCnt",
	Name:        "finalize_total",
	Description: "Order finalization attempts, partitioned by result.",
	Type:        "counter_vec",
	Args:        []string{"result"},
}

// Gateway holds the business metrics of the SagePay bridge.
type Gateway struct {
	registrations *prometheus.CounterVec
	registerDur   *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	finalizations *prometheus.CounterVec
}

// NewGateway creates the gateway collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewGateway(reg prometheus.Registerer) (*Gateway, error) {
	g := &Gateway{
		registrations: NewMetric(registrationTotal, Subsystem).(*prometheus.CounterVec),
		registerDur:   NewMetric(registrationDur, Subsystem).(*prometheus.HistogramVec),
		notifications: NewMetric(notificationTotal, Subsystem).(*prometheus.CounterVec),
		finalizations: NewMetric(finalizeTotal, Subsystem).(*prometheus.CounterVec),
	}
	if reg == nil {
		return g, nil
	}
	for _, c := range []prometheus.Collector{g.registrations, g.registerDur, g.notifications, g.finalizations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gateway) ObserveRegistration(result string, elapsedMs float64) {
	if g == nil {
		return
	}
	g.registrations.WithLabelValues(result).Inc()
	g.registerDur.WithLabelValues(result).Observe(elapsedMs)
}

func (g *Gateway) ObserveNotification(outcome, status string) {
	if g == nil {
		return
	}
	g.notifications.WithLabelValues(outcome, status).Inc()
}

func (g *Gateway) ObserveFinalize(result string) {
	if g == nil {
		return
	}
	g.finalizations.WithLabelValues(result).Inc()
}

const (
	RefererKey = "X-Referer"
)

// Module provides the gateway collectors registered with the default
// registry, which the /metrics listener serves.
var Module = fx.Options(
	fx.Provide(func() (*Gateway, error) { return NewGateway(prometheus.DefaultRegisterer) }),
)
