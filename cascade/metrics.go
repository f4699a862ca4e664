package cascade

import (
	"net/http"

	"github.com/G-Node/cascade/cascade/form"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics counts form submissions and field validation failures.
type metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_submissions_total",
			Help: "Form submissions by outcome (accepted or rejected).",
		}, []string{"outcome"}),
		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_field_errors_total",
			Help: "Field validation failures by field and kind.",
		}, []string{"field", "kind"}),
	}
	m.registry.MustRegister(m.submissions, m.fieldErrors)
	return m
}

func (m *metrics) accepted() {
	m.submissions.WithLabelValues("accepted").Inc()
}

func (m *metrics) rejected(errs map[string]error) {
	m.submissions.WithLabelValues("rejected").Inc()
	for field, err := range errs {
		m.fieldErrors.WithLabelValues(field, form.Kind(err)).Inc()
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
