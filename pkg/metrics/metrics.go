package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for webhooks and the pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	WebhookEventsTotal  *prometheus.CounterVec
	PipelineStepSeconds *prometheus.HistogramVec
	PipelineJobsTotal   *prometheus.CounterVec
	QueuePublishedTotal *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_webhook_events_total",
				Help: "Webhook deliveries by event type and outcome",
			},
			[]string{"event", "outcome"},
		),
		PipelineStepSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meeting_pipeline_step_seconds",
				Help:    "Pipeline step duration",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"step", "outcome"},
		),
		PipelineJobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_pipeline_jobs_total",
				Help: "Pipeline jobs by outcome",
			},
			[]string{"outcome"},
		),
		QueuePublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_queue_published_total",
				Help: "Work items published by queue driver",
			},
			[]string{"driver"},
		),
	}
}

// ObserveWebhook counts one webhook delivery
func (m *Metrics) ObserveWebhook(event, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(event, outcome).Inc()
}

// ObserveStep records a pipeline step execution. Replays are counted with
// outcome "replayed" and zero duration.
func (m *Metrics) ObserveStep(step string, elapsed time.Duration, replayed bool, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case replayed:
		outcome = "replayed"
	case err != nil:
		outcome = "error"
	}
	m.PipelineStepSeconds.WithLabelValues(step, outcome).Observe(elapsed.Seconds())
}

// ObserveJob counts a finished pipeline job
func (m *Metrics) ObserveJob(outcome string) {
	if m == nil {
		return
	}
	m.PipelineJobsTotal.WithLabelValues(outcome).Inc()
}

// ObservePublish counts a published work item
func (m *Metrics) ObservePublish(driver string) {
	if m == nil {
		return
	}
	m.QueuePublishedTotal.WithLabelValues(driver).Inc()
}
