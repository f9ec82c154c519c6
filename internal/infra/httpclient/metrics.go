package httpclient

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	httpRequestDuration metric.Float64Histogram
	httpRequestTotal    metric.Int64Counter
	metricsInitialized  bool
	metricsMutex        sync.Mutex

	numericSegment = regexp.MustCompile(`/\d+(/|$)`)
)

func initMetrics() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if metricsInitialized {
		return
	}

	meter := otel.GetMeterProvider().Meter("dronefleet")

	var err error
	httpRequestDuration, err = meter.Float64Histogram(
		fmt.Sprintf("%s.%s", "dronefleet", "http.client.duration.seconds"),
		metric.WithDescription("Duration of outgoing HTTP requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		panic(err)
	}

	httpRequestTotal, err = meter.Int64Counter(
		fmt.Sprintf("%s.%s", "dronefleet", "http.client.requests.total"),
		metric.WithDescription("Total number of outgoing HTTP requests"),
	)
	if err != nil {
		panic(err)
	}

	metricsInitialized = true
}

// ResetMetricsForTesting resets the metrics initialization state for testing purposes
func ResetMetricsForTesting() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	metricsInitialized = false
}

func recordRequest(ctx context.Context, method, endpoint string, statusCode int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.endpoint", endpoint),
		attribute.Int("http.status_code", statusCode),
	)
	// the request context may already be past its deadline
	ctx = context.WithoutCancel(ctx)
	httpRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
	httpRequestTotal.Add(ctx, 1, attrs)
}

// normalizeEndpoint replaces identifiers in the path so metrics keep a
// bounded cardinality: "/flights/7" becomes "/flights/{id}".
func normalizeEndpoint(path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/{id}$1")
	}
	return path
}
