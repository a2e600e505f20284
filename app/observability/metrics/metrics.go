package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	MessagesTotal          metric.Int64Counter
	EstimatorErrorsTotal   metric.Int64Counter
	StoreMutationsTotal    metric.Int64Counter
	MessageDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments ONLY ONCE,
// using whatever MeterProvider is globally configured at that point.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("caltext")
		var err error
		m := &AppMetrics{}

		m.MessagesTotal, err = meter.Int64Counter(
			"messages_total",
			metric.WithDescription("Total inbound messages handled, by classified intent"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create messages_total: %v", err)
		}

		m.EstimatorErrorsTotal, err = meter.Int64Counter(
			"estimator_errors_total",
			metric.WithDescription("Total failed calorie estimation calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create estimator_errors_total: %v", err)
		}

		m.StoreMutationsTotal, err = meter.Int64Counter(
			"store_mutations_total",
			metric.WithDescription("Total entry store mutations, by operation"),
			metric.WithUnit("{mutation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_mutations_total: %v", err)
		}

		m.MessageDurationSeconds, err = meter.Float64Histogram(
			"message_duration_seconds",
			metric.WithDescription("Duration of message handling in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create message_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, initializing
// it lazily so tests don't need explicit setup. Instruments created
// before a real MeterProvider is installed are no-ops.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
