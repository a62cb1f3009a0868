package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CatalogMetrics contains Prometheus metrics for the game catalog: uploads,
// downloads, and review activity.
type CatalogMetrics struct {
	GamesPublishedTotal  *prometheus.CounterVec
	VersionsPublished    *prometheus.CounterVec
	UploadBytesTotal     *prometheus.CounterVec
	UploadFailuresTotal  *prometheus.CounterVec
	UploadDuration       *prometheus.HistogramVec
	ChecksumMismatches   *prometheus.CounterVec

	DownloadsTotal       *prometheus.CounterVec
	DownloadBytesTotal   *prometheus.CounterVec
	DownloadDuration     *prometheus.HistogramVec

	ReviewsSubmittedTotal *prometheus.CounterVec
	GamesActive           prometheus.Gauge
}

// NewCatalogMetrics creates and registers the catalog metrics.
func NewCatalogMetrics(namespace string) *CatalogMetrics {
	return &CatalogMetrics{
		GamesPublishedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "games_published_total",
			Help:      "Total number of new games published",
		}, []string{"game_type"}),
		VersionsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "versions_published_total",
			Help:      "Total number of game versions published (new and updates)",
		}, []string{"kind"}),
		UploadBytesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "upload_bytes_total",
			Help:      "Total bytes received across all uploads",
		}, []string{"kind"}),
		UploadFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "upload_failures_total",
			Help:      "Total number of failed uploads",
		}, []string{"reason"}),
		UploadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "upload_duration_seconds",
			Help:      "Upload duration from UPLOAD_START to UPLOAD_SUCCESS",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"kind"}),
		ChecksumMismatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "checksum_mismatches_total",
			Help:      "Total number of uploads rejected for a checksum mismatch",
		}, []string{"kind"}),

		DownloadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "downloads_total",
			Help:      "Total number of completed game downloads",
		}, []string{"game_id"}),
		DownloadBytesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "download_bytes_total",
			Help:      "Total bytes streamed to players",
		}, []string{"game_id"}),
		DownloadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "download_duration_seconds",
			Help:      "Download duration from DOWNLOAD_META to DOWNLOAD_COMPLETE",
			Buckets:   prometheus.DefBuckets,
		}, []string{"game_id"}),

		ReviewsSubmittedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "reviews_submitted_total",
			Help:      "Total number of reviews submitted",
		}, []string{"game_id"}),
		GamesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "games_active",
			Help:      "Number of games currently active in the catalog",
		}),
	}
}
