package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics records dashboard query outcomes.
type QueryMetrics struct {
	duration      *prometheus.HistogramVec
	success       *prometheus.CounterVec
	failure       *prometheus.CounterVec
	droppedEvents prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
}

// NewQueryMetrics registers the dashboard query metrics on the provided registerer.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	if reg == nil {
		return &QueryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_query_duration_seconds",
		Help:    "Duration of dashboard queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"range"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_query_success",
		Help: "Successful dashboard queries.",
	}, []string{"range"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_query_failure",
		Help: "Failed dashboard queries.",
	}, []string{"range", "code"})
	droppedEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_dropped_events_total",
		Help: "Events skipped during aggregation (malformed or out of bucket range).",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Dashboard results served from cache.",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Dashboard results recomputed on cache miss.",
	})
	reg.MustRegister(duration, success, failure, droppedEvents, cacheHits, cacheMisses)
	return &QueryMetrics{
		duration:      duration,
		success:       success,
		failure:       failure,
		droppedEvents: droppedEvents,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
	}
}

// ObserveDuration records the duration for a query over the named range.
func (q *QueryMetrics) ObserveDuration(rangeKeyword string, duration time.Duration) {
	if q == nil || q.duration == nil {
		return
	}
	q.duration.WithLabelValues(normalizeLabel(rangeKeyword)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named range.
func (q *QueryMetrics) IncSuccess(rangeKeyword string) {
	if q == nil || q.success == nil {
		return
	}
	q.success.WithLabelValues(normalizeLabel(rangeKeyword)).Inc()
}

// IncFailure increments the failure counter for the named range and error code.
func (q *QueryMetrics) IncFailure(rangeKeyword, code string) {
	if q == nil || q.failure == nil {
		return
	}
	q.failure.WithLabelValues(normalizeLabel(rangeKeyword), normalizeLabel(code)).Inc()
}

// AddDroppedEvents adds to the dropped-event counter.
func (q *QueryMetrics) AddDroppedEvents(n int) {
	if q == nil || q.droppedEvents == nil || n <= 0 {
		return
	}
	q.droppedEvents.Add(float64(n))
}

// IncCacheHit counts a result served from cache.
func (q *QueryMetrics) IncCacheHit() {
	if q == nil || q.cacheHits == nil {
		return
	}
	q.cacheHits.Inc()
}

// IncCacheMiss counts a recomputation on cache miss.
func (q *QueryMetrics) IncCacheMiss() {
	if q == nil || q.cacheMisses == nil {
		return
	}
	q.cacheMisses.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
