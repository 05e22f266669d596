package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/hunomina/sort/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return red, reader
}

func setupSortMeter(t *testing.T) (*observability.SortMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	sm, err := observability.NewSortMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return sm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumInt64(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestSortMetrics_RecordPass(t *testing.T) {
	t.Parallel()
	sm, reader := setupSortMeter(t)
	ctx := context.Background()

	sm.RecordPass(ctx, 0, 10, 17)
	sm.RecordPass(ctx, 1, 10, 9)

	rm := collectMetrics(t, reader)

	passes := findMetric(rm, "kwaysort.passes.total")
	require.NotNil(t, passes, "kwaysort.passes.total metric not found")
	assert.Equal(t, int64(2), sumInt64(t, passes))

	elements := findMetric(rm, "kwaysort.elements.merged.total")
	require.NotNil(t, elements)
	assert.Equal(t, int64(20), sumInt64(t, elements))

	comparisons := findMetric(rm, "kwaysort.comparisons.total")
	require.NotNil(t, comparisons)
	assert.Equal(t, int64(26), sumInt64(t, comparisons))
}

func TestSortMetrics_RecordSort(t *testing.T) {
	t.Parallel()
	sm, reader := setupSortMeter(t)
	ctx := context.Background()

	sm.RecordSort(ctx, "heap", nil, 3*time.Millisecond)

	rm := collectMetrics(t, reader)

	require.NotNil(t, findMetric(rm, "kwaysort.sorts.total"))
	require.NotNil(t, findMetric(rm, "kwaysort.sort.duration.seconds"))
	assert.Nil(t, findMetric(rm, "kwaysort.sort.errors.total"))
}

func TestSortMetrics_RecordSortError(t *testing.T) {
	t.Parallel()
	sm, reader := setupSortMeter(t)

	sm.RecordSort(context.Background(), "scan", errors.New("boom"), time.Second)

	rm := collectMetrics(t, reader)

	errTotal := findMetric(rm, "kwaysort.sort.errors.total")
	require.NotNil(t, errTotal, "kwaysort.sort.errors.total metric not found")
	assert.Equal(t, int64(1), sumInt64(t, errTotal))
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "kwaysort_sort", observability.StatusOK, time.Millisecond*100)

	rm := collectMetrics(t, reader)

	reqTotal := findMetric(rm, "kwaysort.requests.total")
	require.NotNil(t, reqTotal, "kwaysort.requests.total metric not found")

	reqDuration := findMetric(rm, "kwaysort.request.duration.seconds")
	require.NotNil(t, reqDuration, "kwaysort.request.duration.seconds metric not found")
}

func TestREDMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)

	red.RecordRequest(context.Background(), "kwaysort_sort", observability.StatusError, time.Second)

	rm := collectMetrics(t, reader)

	errTotal := findMetric(rm, "kwaysort.errors.total")
	require.NotNil(t, errTotal, "kwaysort.errors.total metric not found")
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	done := red.TrackInflight(ctx, "kwaysort_sort")

	rm := collectMetrics(t, reader)

	inflight := findMetric(rm, "kwaysort.inflight.requests")
	require.NotNil(t, inflight, "kwaysort.inflight.requests metric not found")
	assert.Equal(t, int64(1), sumInt64(t, inflight))

	done()

	rm = collectMetrics(t, reader)
	inflight = findMetric(rm, "kwaysort.inflight.requests")
	require.NotNil(t, inflight)
	assert.Equal(t, int64(0), sumInt64(t, inflight))
}

func TestNewREDMetrics_WithDefaultProviders(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(providers.Meter)
	require.NoError(t, err)
	assert.NotNil(t, red)

	red.RecordRequest(context.Background(), "test", observability.StatusOK, time.Millisecond)
}
