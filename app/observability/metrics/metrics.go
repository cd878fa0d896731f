package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RecommendationsTotal          metric.Int64Counter
	RecommendationDurationSeconds metric.Float64Histogram
	PoisDroppedTotal              metric.Int64Counter
	SolverDurationSeconds         metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once. It gets
// the Meter from the globally configured MeterProvider, so call it after
// tracer.InitTracingAndMetrics.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-trip-itinerary")
		var err error
		m := &AppMetrics{}

		m.RecommendationsTotal, err = meter.Int64Counter(
			"recommendations_total",
			metric.WithDescription("Total number of itineraries built"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendations_total: %v", err)
		}

		m.RecommendationDurationSeconds, err = meter.Float64Histogram(
			"recommendation_duration_seconds",
			metric.WithDescription("End-to-end duration of itinerary builds in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendation_duration_seconds: %v", err)
		}

		m.PoisDroppedTotal, err = meter.Int64Counter(
			"pois_dropped_total",
			metric.WithDescription("Total number of POIs dropped from day routes"),
			metric.WithUnit("{poi}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pois_dropped_total: %v", err)
		}

		m.SolverDurationSeconds, err = meter.Float64Histogram(
			"solver_duration_seconds",
			metric.WithDescription("Duration of single-day route solves in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create solver_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. It lazily
// initializes on first use so library code and tests never nil-panic; the
// instruments are no-ops until a real MeterProvider is installed.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
