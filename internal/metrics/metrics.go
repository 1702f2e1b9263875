package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terraincognita07/autobuyer/internal/services"
)

const namespace = "autobuyer"

// ReminderMetrics records reminder runs. It satisfies services.ReminderRecorder.
type ReminderMetrics struct {
	runs          *prometheus.CounterVec
	notifications *prometheus.CounterVec
	skipped       prometheus.Counter
	due           prometheus.Gauge
	candidates    prometheus.Gauge
	lastRun       prometheus.Gauge
	duration      prometheus.Histogram
}

func NewReminderMetrics(registry *prometheus.Registry) *ReminderMetrics {
	factory := promauto.With(registry)
	return &ReminderMetrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_runs_total",
			Help:      "Reminder runs by outcome.",
		}, []string{"outcome"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_notifications_total",
			Help:      "Per-user reminder notifications by result.",
		}, []string{"result"}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_skipped_subscriptions_total",
			Help:      "Subscriptions whose schedule could not be evaluated.",
		}),
		due: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminder_due_subscriptions",
			Help:      "Subscriptions due on the target date of the last run.",
		}),
		candidates: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminder_active_subscriptions",
			Help:      "Active subscriptions evaluated by the last run.",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminder_last_run_timestamp_seconds",
			Help:      "Unix time the last reminder run started.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_run_duration_seconds",
			Help:      "Reminder run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *ReminderMetrics) ObserveRun(report services.RunReport) {
	outcome := "ok"
	if report.Failed > 0 {
		outcome = "partial"
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.notifications.WithLabelValues("sent").Add(float64(report.Sent))
	m.notifications.WithLabelValues("failed").Add(float64(report.Failed))
	m.notifications.WithLabelValues("already_sent").Add(float64(report.AlreadySent))
	m.skipped.Add(float64(len(report.Skipped)))
	m.due.Set(float64(report.Due))
	m.candidates.Set(float64(report.Candidates))
	if !report.StartedAt.IsZero() {
		m.lastRun.Set(float64(report.StartedAt.Unix()))
	}
	m.duration.Observe(report.Duration.Seconds())
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
