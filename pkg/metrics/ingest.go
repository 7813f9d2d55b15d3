package metrics

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics records event-ingest outcomes.
type IngestMetrics struct {
	handled  *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewIngestMetrics registers the ingest metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	handled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_events_handled_total",
		Help: "Business events appended to the event log.",
	}, []string{"kind"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_events_rejected_total",
		Help: "Business events rejected before append.",
	}, []string{"kind", "reason"})
	reg.MustRegister(handled, rejected)
	return &IngestMetrics{handled: handled, rejected: rejected}
}

// IncHandled counts an appended event of the given kind.
func (i *IngestMetrics) IncHandled(kind string) {
	if i == nil || i.handled == nil {
		return
	}
	i.handled.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncRejected counts a rejected event of the given kind.
func (i *IngestMetrics) IncRejected(kind, reason string) {
	if i == nil || i.rejected == nil {
		return
	}
	i.rejected.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}
