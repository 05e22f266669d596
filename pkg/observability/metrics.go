package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSortsTotal       = "kwaysort.sorts.total"
	metricSortDuration     = "kwaysort.sort.duration.seconds"
	metricSortErrorsTotal  = "kwaysort.sort.errors.total"
	metricPassesTotal      = "kwaysort.passes.total"
	metricElementsMerged   = "kwaysort.elements.merged.total"
	metricComparisonsTotal = "kwaysort.comparisons.total"

	metricRequestsTotal    = "kwaysort.requests.total"
	metricRequestDuration  = "kwaysort.request.duration.seconds"
	metricErrorsTotal      = "kwaysort.errors.total"
	metricInflightRequests = "kwaysort.inflight.requests"

	attrOp       = "op"
	attrStatus   = "status"
	attrStrategy = "strategy"
	attrPass     = "pass"

	// StatusOK labels a successful sort or request.
	StatusOK = "ok"
	// StatusError labels a failed sort or request.
	StatusError = "error"
)

// durationBucketBoundaries covers sub-millisecond in-memory sorts up to
// multi-minute runs over large inputs.
var durationBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300}

// SortMetrics holds the instruments describing merge sort runs.
type SortMetrics struct {
	sortsTotal   metric.Int64Counter
	sortDuration metric.Float64Histogram
	sortErrors   metric.Int64Counter
	passesTotal  metric.Int64Counter
	elements     metric.Int64Counter
	comparisons  metric.Int64Counter
}

// NewSortMetrics creates sort instruments from the given meter.
func NewSortMetrics(mt metric.Meter) (*SortMetrics, error) {
	sorts, err := mt.Int64Counter(metricSortsTotal,
		metric.WithDescription("Total number of completed sorts"),
		metric.WithUnit("{sort}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSortsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricSortDuration,
		metric.WithDescription("Sort duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSortDuration, err)
	}

	sortErrors, err := mt.Int64Counter(metricSortErrorsTotal,
		metric.WithDescription("Total number of failed sorts"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSortErrorsTotal, err)
	}

	passes, err := mt.Int64Counter(metricPassesTotal,
		metric.WithDescription("Total number of merge passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPassesTotal, err)
	}

	elements, err := mt.Int64Counter(metricElementsMerged,
		metric.WithDescription("Elements emitted by the merger across all passes"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricElementsMerged, err)
	}

	comparisons, err := mt.Int64Counter(metricComparisonsTotal,
		metric.WithDescription("Element comparisons made while merging"),
		metric.WithUnit("{comparison}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricComparisonsTotal, err)
	}

	return &SortMetrics{
		sortsTotal:   sorts,
		sortDuration: duration,
		sortErrors:   sortErrors,
		passesTotal:  passes,
		elements:     elements,
		comparisons:  comparisons,
	}, nil
}

// RecordPass records one completed pass.
func (sm *SortMetrics) RecordPass(ctx context.Context, index, elements int, comparisons int64) {
	attrs := metric.WithAttributes(attribute.Int(attrPass, index))

	sm.passesTotal.Add(ctx, 1, attrs)
	sm.elements.Add(ctx, int64(elements), attrs)
	sm.comparisons.Add(ctx, comparisons, attrs)
}

// RecordSort records a finished sort with its strategy, outcome and duration.
func (sm *SortMetrics) RecordSort(ctx context.Context, strategy string, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}

	attrs := metric.WithAttributes(
		attribute.String(attrStrategy, strategy),
		attribute.String(attrStatus, status),
	)

	sm.sortsTotal.Add(ctx, 1, attrs)
	sm.sortDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		sm.sortErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStrategy, strategy)))
	}
}

// REDMetrics holds the Rate, Error, Duration instruments for MCP tool calls.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records a completed request with its operation, status, and duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}
