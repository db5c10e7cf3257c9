package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification outcomes recorded per oracle call.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeSkipped  = "skipped"
)

type Handler struct {
	ClassificationsTotal *prometheus.CounterVec
	CommentsTotal        *prometheus.CounterVec
	BatchRowsTotal       *prometheus.CounterVec
	OracleLatency        prometheus.Histogram
}

func New() (*Handler, error) {
	return &Handler{
		ClassificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "The total number of classification attempts by outcome",
		}, []string{"outcome"}),
		CommentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comments_total",
			Help: "The total number of comment write operations",
		}, []string{"operation"}),
		BatchRowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_rows_total",
			Help: "The total number of batch rows by result",
		}, []string{"result"}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "oracle_request_latency_seconds",
			Help:    "The latency of classification service calls",
			Buckets: prometheus.DefBuckets,
		}),
	}, nil
}

// IncClassificationsTotal increments the classification attempts counter.
func (h *Handler) IncClassificationsTotal(outcome string) {
	h.ClassificationsTotal.WithLabelValues(outcome).Inc()
}

// IncCommentsTotal increments the comment writes counter.
func (h *Handler) IncCommentsTotal(operation string) {
	h.CommentsTotal.WithLabelValues(operation).Inc()
}

// IncBatchRowsTotal increments the batch rows counter.
func (h *Handler) IncBatchRowsTotal(result string) {
	h.BatchRowsTotal.WithLabelValues(result).Inc()
}

// ObserveOracleLatency records the latency of a classification call.
func (h *Handler) ObserveOracleLatency(duration time.Duration) {
	h.OracleLatency.Observe(duration.Seconds())
}
