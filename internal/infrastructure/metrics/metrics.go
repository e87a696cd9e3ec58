package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionAmount   *prometheus.HistogramVec
	TransactionErrors   *prometheus.CounterVec

	// Feed metrics
	FeedSubscriptions prometheus.Gauge
	FeedRefreshes     *prometheus.CounterVec
	PartitionErrors   *prometheus.CounterVec

	// Profile metrics
	ProfilesCreated prometheus.Counter
	SettingsUpdates prometheus.Counter
	DataResets      prometheus.Counter
	AutoAddCredits  prometheus.Counter
	ExportRequests  prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	RedisErrors *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transaction metrics
		TransactionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_transactions_created_total",
				Help: "Total number of transactions recorded by kind",
			},
			[]string{"kind"},
		),
		TransactionAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mypocket_transaction_amount",
				Help:    "Transaction amounts by kind",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000},
			},
			[]string{"kind"},
		),
		TransactionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_transaction_errors_total",
				Help: "Total number of transaction errors by type",
			},
			[]string{"error_type"},
		),

		// Feed metrics
		FeedSubscriptions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mypocket_feed_subscriptions",
			Help: "Current number of live feed subscriptions",
		}),
		FeedRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_feed_refreshes_total",
				Help: "Total partition snapshot refreshes by collection",
			},
			[]string{"collection"},
		),
		PartitionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_partition_errors_total",
				Help: "Total partition refresh failures by collection",
			},
			[]string{"collection"},
		),

		// Profile metrics
		ProfilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mypocket_profiles_created_total",
			Help: "Total number of profiles created",
		}),
		SettingsUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mypocket_settings_updates_total",
			Help: "Total number of settings updates",
		}),
		DataResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mypocket_data_resets_total",
			Help: "Total number of full data resets",
		}),
		AutoAddCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mypocket_auto_add_credits_total",
			Help: "Total number of automatic monthly credits",
		}),
		ExportRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mypocket_export_requests_total",
			Help: "Total number of CSV export requests",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mypocket_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Redis metrics
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypocket_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
	}
}
