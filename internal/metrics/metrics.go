// Package metrics defines the Prometheus collectors of the site backend
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route pattern
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "djnacci",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// UploadsTotal counts uploaded media files by media type and outcome
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Total media file uploads",
		},
		[]string{"type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Total bytes stored by uploads",
		},
		[]string{"type"},
	)

	// ConversionsTotal counts image re-encodings by source MIME type
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "media",
			Name:      "conversions_total",
			Help:      "Total image conversions to JPEG",
		},
		[]string{"source_type", "status"},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total blob storage operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "djnacci",
			Subsystem: "storage",
			Name:      "duration_seconds",
			Help:      "Blob storage operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"backend", "operation"},
	)

	// OrphansRemovedTotal counts blobs deleted by the orphan sweeper
	OrphansRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "storage",
			Name:      "orphans_removed_total",
			Help:      "Total stored files removed because no media item references them",
		},
	)

	BookingRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "djnacci",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Total booking requests received",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordUpload records a stored upload
func RecordUpload(mediaType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(mediaType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(mediaType).Add(float64(bytes))
	}
}

// RecordConversion records an image conversion attempt
func RecordConversion(sourceType, status string) {
	ConversionsTotal.WithLabelValues(sourceType, status).Inc()
}

// RecordStorageOperation records a blob storage call
func RecordStorageOperation(backend, operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageDuration.WithLabelValues(backend, operation).Observe(durationSec)
}

// StatusLabel maps an error to the status label used by the counters
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
