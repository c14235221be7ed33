// Package metrics defines all custom Prometheus metrics for the dataset API.
// It is the single source of truth for metric names, labels, and help
// strings. promauto registers everything with the default registry at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datasethub"

// UploadsTotal counts datasets created through the upload pipeline.
// Label:
//   - format: the detected file format ("csv", "xlsx", "xls", "json")
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of successful dataset uploads, by file format.",
	},
	[]string{"format"},
)

// UploadErrorsTotal counts failed upload and file-replacement attempts.
// Label:
//   - reason: "unsupported_format", "parse_failed", or "storage_failed"
var UploadErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_errors_total",
		Help:      "Total number of failed upload attempts, by reason.",
	},
	[]string{"reason"},
)

// DownloadsTotal counts successfully streamed dataset downloads.
var DownloadsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Total number of successful dataset downloads.",
	},
)

// RateLimitedTotal counts requests rejected by the fixed-window limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)
