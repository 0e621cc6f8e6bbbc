package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JanitorMetrics records background maintenance jobs.
type JanitorMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	purged   *prometheus.CounterVec
}

func NewJanitorMetrics(reg prometheus.Registerer) *JanitorMetrics {
	if reg == nil {
		return &JanitorMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_janitor_job_duration_seconds",
		Help:    "Duration of maintenance jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_janitor_job_success_total",
		Help: "Successful maintenance job runs.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_janitor_job_failure_total",
		Help: "Failed maintenance job runs.",
	}, []string{"job"})
	purged := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_janitor_purged_total",
		Help: "Expired entries removed by maintenance jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure, purged)
	return &JanitorMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		purged:   purged,
	}
}

func (j *JanitorMetrics) ObserveDuration(job string, d time.Duration) {
	if j == nil || j.duration == nil {
		return
	}
	j.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (j *JanitorMetrics) IncSuccess(job string) {
	if j == nil || j.success == nil {
		return
	}
	j.success.WithLabelValues(normalizeLabel(job)).Inc()
}

func (j *JanitorMetrics) IncFailure(job string) {
	if j == nil || j.failure == nil {
		return
	}
	j.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddPurged counts removed entries. Non-positive counts are dropped.
func (j *JanitorMetrics) AddPurged(job string, n int64) {
	if j == nil || j.purged == nil || n <= 0 {
		return
	}
	j.purged.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}
