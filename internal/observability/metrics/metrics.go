package metrics

import "github.com/prometheus/client_golang/prometheus"

// RelayMetrics exposes counters/histograms for the webhook→CRM relay flow.
type RelayMetrics struct {
	eventsTotal      *prometheus.CounterVec
	crmRequestsTotal *prometheus.CounterVec
	pipelineLatency  *prometheus.HistogramVec
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zadarma_relay",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Inbound Zadarma webhook events",
		}, []string{"event", "outcome"}),
		crmRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zadarma_relay",
			Subsystem: "atz",
			Name:      "requests_total",
			Help:      "ATZ CRM operations by outcome",
		}, []string{"operation", "status"}),
		pipelineLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zadarma_relay",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "End-to-end duration of the background CRM pipeline",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.crmRequestsTotal, m.pipelineLatency)
	return m
}

func (m *RelayMetrics) ObserveEvent(event, outcome string) {
	if m == nil {
		return
	}
	if event == "" {
		event = "(none)"
	}
	m.eventsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *RelayMetrics) ObserveCRMRequest(operation, status string) {
	if m == nil {
		return
	}
	m.crmRequestsTotal.WithLabelValues(operation, status).Inc()
}

func (m *RelayMetrics) ObservePipeline(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.pipelineLatency.WithLabelValues(outcome).Observe(seconds)
}
