package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики движка трансформаций.
var (
	// JobsStarted — количество взятых в работу jobs.
	JobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldmill_jobs_started_total",
		Help: "Total transformation jobs picked up by the runner",
	})

	// JobsCompleted — завершённые jobs по итоговому статусу.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldmill_jobs_completed_total",
		Help: "Total transformation jobs finished, by terminal status",
	}, []string{"status"})

	// FieldsSettled — поля, достигшие терминального статуса.
	FieldsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldmill_fields_settled_total",
		Help: "Total fields settled, by terminal status",
	}, []string{"status"})

	// WaveDuration — длительность выполнения одной волны.
	WaveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldmill_wave_duration_seconds",
		Help:    "Duration of a single dependency wave",
		Buckets: prometheus.DefBuckets,
	})
)
