package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageview/pageview/pkg/scheduler"
)

const namespace = "pageview"

// Prometheus implements scheduler.Metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	jobDuration    *prometheus.HistogramVec
	jobTotal       *prometheus.CounterVec
	jobsRunning    *prometheus.GaugeVec
	workerBusy     *prometheus.GaugeVec
	workersLive    prometheus.Gauge
	workersPrimary prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Job execution time in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		jobTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_total",
				Help:      "Closed jobs by category and result.",
			},
			[]string{"category", "result"}, // completed | canceled
		),
		jobsRunning: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "jobs_running",
				Help:      "Jobs currently executing.",
			},
			[]string{"category"},
		),
		workerBusy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_busy",
				Help:      "1 while the worker executes a job.",
			},
			[]string{"worker_id"},
		),
		workersLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Live workers.",
		}),
		workersPrimary: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_primary",
			Help:      "Live primary workers.",
		}),
	}

	p.registry.MustRegister(
		p.jobDuration, p.jobTotal, p.jobsRunning,
		p.workerBusy, p.workersLive, p.workersPrimary,
	)
	return p
}

func (p *Prometheus) JobStarted(category string) {
	p.jobsRunning.WithLabelValues(category).Inc()
}

func (p *Prometheus) JobFinished(category string, result scheduler.JobResult, elapsed time.Duration) {
	p.jobsRunning.WithLabelValues(category).Dec()
	p.jobTotal.WithLabelValues(category, result.String()).Inc()
	p.jobDuration.WithLabelValues(category).Observe(elapsed.Seconds())
}

func (p *Prometheus) WorkerBusy(worker int, busy bool) {
	v := 0.0
	if busy {
		v = 1
	}
	p.workerBusy.WithLabelValues(strconv.Itoa(worker)).Set(v)
}

func (p *Prometheus) WorkersChanged(live, primary int) {
	p.workersLive.Set(float64(live))
	p.workersPrimary.Set(float64(primary))
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
