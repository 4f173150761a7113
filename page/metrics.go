package page

import "github.com/prometheus/client_golang/prometheus"

const (
	opPick = "pick"
	opIncr = "incr"
	opRead = "read"
)

// Metrics 页面的业务指标
type Metrics struct {
	feeds  prometheus.Counter
	errors *prometheus.CounterVec
}

// NewMetrics create Metrics and register collectors to reg
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		feeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_total",
			Help:      "Number of successful feeds.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_errors_total",
			Help:      "Number of failed page views by operation.",
		}, []string{"op"}),
	}
	for _, collector := range []prometheus.Collector{m.feeds, m.errors} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) fed() {
	if m != nil {
		m.feeds.Inc()
	}
}

func (m *Metrics) failed(op string) {
	if m != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
