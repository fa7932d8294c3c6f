package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_extractions_total",
			Help: "Sheets converted to records, by mode",
		},
		[]string{"mode"},
	)

	RowsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sheet_rows_extracted_total",
			Help: "Records produced by sheet extraction",
		},
	)

	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workbook_uploads_total",
			Help: "Workbook uploads by result",
		},
		[]string{"result"},
	)

	RemoteFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_fetches_total",
			Help: "Remote workbook fetches by result",
		},
		[]string{"result"},
	)

	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Upload notification emails sent",
		},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Upload notification emails that failed after retries",
		},
	)
)

func Init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(Extractions)
	prometheus.MustRegister(RowsExtracted)
	prometheus.MustRegister(Uploads)
	prometheus.MustRegister(RemoteFetches)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(NotificationFailures)
}
