package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus collectors for address lookups and the batch geocoder.
type Metrics struct {
	SearchAttempts *prometheus.CounterVec
	SearchLookups  *prometheus.CounterVec
	RequestSeconds prometheus.Histogram
	TaskProcessed  *prometheus.CounterVec
	ActiveWorkers  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SearchAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kakao_search_attempts_total",
			Help: "Total number of calls made to the Kakao address search API, by outcome.",
		}, []string{"outcome"}),
		SearchLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kakao_search_lookups_total",
			Help: "Total number of address lookups, by final result.",
		}, []string{"result"}),
		RequestSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "kakao_search_request_duration_seconds",
			Help:    "Duration of single requests to the Kakao address search API.",
			Buckets: prometheus.DefBuckets,
		}),
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_tasks_processed_total",
			Help: "Total number of processed geocoding tasks.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocoding_active_workers",
			Help: "Current number of active workers processing tasks.",
		}),
	}
}
