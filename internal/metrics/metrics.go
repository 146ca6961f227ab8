package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssetUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asset_upload_duration_seconds",
			Help:    "Duration of single uploads to the asset host",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "status"},
	)

	UploadBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_batches_total",
			Help: "Upload batches by outcome",
		},
		[]string{"outcome"}, // outcome: success, invalid, failed
	)

	GalleryMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_mutations_total",
			Help: "Gallery mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	GalleryConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_version_conflicts_total",
			Help: "Version mismatches observed while writing a gallery",
		},
		[]string{"op"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projection_cache_lookups_total",
			Help: "Projection cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	OrphanedAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orphaned_assets",
			Help: "Uploaded asset references not attached to any gallery after the grace period",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func RecordAssetUpload(provider, status string, d time.Duration) {
	AssetUploadDuration.WithLabelValues(provider, status).Observe(d.Seconds())
}

func IncUploadBatch(outcome string) {
	UploadBatches.WithLabelValues(outcome).Inc()
}

func IncGalleryMutation(op, outcome string) {
	GalleryMutations.WithLabelValues(op, outcome).Inc()
}

func IncGalleryConflict(op string) {
	GalleryConflicts.WithLabelValues(op).Inc()
}

func IncCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
