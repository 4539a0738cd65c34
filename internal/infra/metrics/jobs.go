package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(generationJobsTotal, generationPollAttempts, generationDurationSeconds, storeWriteFailures)
}

var generationJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_jobs_total",
		Help: "Total number of generation jobs finished, labeled by terminal status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var generationPollAttempts = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "generation_poll_attempts",
		Help:    "Poll attempts needed before a job reached a terminal state.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 120},
	},
)

var generationDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "generation_duration_seconds",
		Help:    "Wall time from submission to terminal state.",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
	},
	[]string{"provider", "status"},
)

var storeWriteFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "operation_store_write_failures_total",
		Help: "Best-effort store writes that failed and were only logged.",
	},
)

func IncGenerationJob(status string) {
	generationJobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObservePollAttempts(n int) {
	generationPollAttempts.Observe(float64(n))
}

func ObserveGenerationDuration(provider, status string, seconds float64) {
	generationDurationSeconds.WithLabelValues(norm(provider), norm(status)).Observe(seconds)
}

func IncStoreWriteFailure() { storeWriteFailures.Inc() }
