package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storelift_records_resolved_total",
			Help: "Enrichment resolutions by deepest layer reached",
		},
		[]string{"layer"},
	)

	RecordsWithoutTable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storelift_records_without_spec_table_total",
			Help: "Records that composed without a specification table",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storelift_uploads_total",
			Help: "Upload outcomes by result",
		},
		[]string{"result"},
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storelift_upload_duration_seconds",
			Help:    "Wall time per record upload including retries",
			Buckets: prometheus.DefBuckets,
		},
	)
)
