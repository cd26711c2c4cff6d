package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exported by the pipeline.
type Metrics struct {
	QueueDepth          prometheus.Gauge
	ActiveRequests      prometheus.Gauge
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	UpstreamDegraded    prometheus.Counter
	JobsTotal           *prometheus.CounterVec
	CandidatesProcessed prometheus.Counter
	CandidatesFailed    prometheus.Counter
}

// NewMetrics creates and registers the pipeline collectors on the given
// registerer. Passing prometheus.DefaultRegisterer wires them to /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "talentscope_scheduler_queue_depth",
			Help: "Number of requests waiting in the scheduler queue.",
		}),
		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "talentscope_scheduler_active_requests",
			Help: "Upstream calls currently in flight.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentscope_scheduler_cache_hits_total",
			Help: "Scheduler requests answered from the response cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentscope_scheduler_cache_misses_total",
			Help: "Scheduler requests that required an upstream call.",
		}),
		UpstreamDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentscope_enrich_degraded_total",
			Help: "Enrichment calls that fell back to a synthesized minimal profile.",
		}),
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "talentscope_jobs_total",
			Help: "Enrichment jobs by terminal status.",
		}, []string{"status"}),
		CandidatesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentscope_candidates_processed_total",
			Help: "Candidates that completed the pipeline.",
		}),
		CandidatesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentscope_candidates_failed_total",
			Help: "Candidates skipped due to a per-candidate failure.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.QueueDepth, m.ActiveRequests,
			m.CacheHits, m.CacheMisses, m.UpstreamDegraded,
			m.JobsTotal, m.CandidatesProcessed, m.CandidatesFailed,
		)
	}
	return m
}

// NopMetrics returns unregistered collectors, convenient for tests and the CLI.
func NopMetrics() *Metrics {
	return NewMetrics(nil)
}
