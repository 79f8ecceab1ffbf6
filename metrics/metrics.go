package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP API metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Fetcher metrics
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_pages_fetched_total",
			Help: "Search result pages requested from the marketplace",
		},
		[]string{"mode", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_fetch_duration_seconds",
			Help:    "Time spent fetching all pages for one report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// Parser and qualifier metrics
	CardsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cards_parsed_total",
			Help: "Listing cards seen by the parser",
		},
		[]string{"result"},
	)

	ListingsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_dropped_total",
			Help: "Candidates removed by the qualifier",
		},
		[]string{"reason"},
	)

	// Report metrics
	ReportsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_built_total",
			Help: "Pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	ReportProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_products",
			Help: "Qualifying listings in the most recent report",
		},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "fetch_mode"},
	)
)

// Init records static application info.
func Init(serviceName, version, fetchMode string) {
	ApplicationInfo.WithLabelValues(serviceName, version, fetchMode).Set(1)
}
