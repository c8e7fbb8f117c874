package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SubmissionsTotal          metric.Int64Counter
	SubmissionDurationSeconds metric.Float64Histogram
	LeaderboardRequestsTotal  metric.Int64Counter
	DbQueryDurationSeconds    metric.Float64Histogram
	DbQueryErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using
// the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("worst-passwords-api")
		var err error
		m := &AppMetrics{}

		m.SubmissionsTotal, err = meter.Int64Counter(
			"password_submissions_total",
			metric.WithDescription("Total number of weak-password submissions accepted"),
			metric.WithUnit("{submission}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create password_submissions_total: %v", err)
		}

		m.SubmissionDurationSeconds, err = meter.Float64Histogram(
			"password_submission_duration_seconds",
			metric.WithDescription("Duration of submission requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create password_submission_duration_seconds: %v", err)
		}

		m.LeaderboardRequestsTotal, err = meter.Int64Counter(
			"leaderboard_requests_total",
			metric.WithDescription("Total number of leaderboard reads"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create leaderboard_requests_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics, or nil when InitAppMetrics has not
// run (tests).
func Get() *AppMetrics {
	return appMetrics
}
