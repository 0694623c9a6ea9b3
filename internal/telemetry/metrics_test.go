package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/steveyegge/appmgr/internal/types"
)

func collectWorkflow(t *testing.T) func() map[string]metricdata.Aggregation {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bindInstruments(mp)
	t.Cleanup(func() {
		bindInstruments(metricnoop.NewMeterProvider())
		_ = mp.Shutdown(context.Background())
	})
	return func() map[string]metricdata.Aggregation {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		out := map[string]metricdata.Aggregation{}
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				out[m.Name] = m.Data
			}
		}
		return out
	}
}

func attr(t *testing.T, set attribute.Set, key string) string {
	t.Helper()
	v, ok := set.Value(attribute.Key(key))
	require.True(t, ok, "missing attribute %s", key)
	return v.AsString()
}

func TestRecordTransitionAndRejected(t *testing.T) {
	collect := collectWorkflow(t)
	ctx := context.Background()

	RecordTransition(ctx, types.ActionAccept, types.StateReview, types.StateInterview)
	RecordTransition(ctx, types.ActionAccept, types.StateReview, types.StateInterview)
	RecordRejected(ctx, types.ActionReopen, types.StateReview)
	RecordCreated(ctx, types.AppTypeOld)

	got := collect()

	sum, ok := got[MetricTransitions].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	dp := sum.DataPoints[0]
	assert.Equal(t, int64(2), dp.Value)
	assert.Equal(t, "accept", attr(t, dp.Attributes, "appmgr.action"))
	assert.Equal(t, "Review", attr(t, dp.Attributes, "appmgr.state.from"))
	assert.Equal(t, "Interview", attr(t, dp.Attributes, "appmgr.state.to"))

	rejected, ok := got[MetricRejected].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejected.DataPoints, 1)
	assert.Equal(t, "reopen", attr(t, rejected.DataPoints[0].Attributes, "appmgr.action"))

	created, ok := got[MetricCreated].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, "Old", attr(t, created.DataPoints[0].Attributes, "appmgr.type"))
}

func TestRecordStateCountsCoversEveryState(t *testing.T) {
	collect := collectWorkflow(t)

	a, err := types.NewApplication(1, types.AppTypeNew, "a", "n")
	require.NoError(t, err)
	b, err := types.NewApplication(2, types.AppTypeNew, "b", "n")
	require.NoError(t, err)
	RecordStateCounts(context.Background(), []*types.Application{a, b})

	gauge, ok := collect()[MetricByState].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, len(types.States))
	byState := map[string]int64{}
	for _, dp := range gauge.DataPoints {
		byState[attr(t, dp.Attributes, "appmgr.state")] = dp.Value
	}
	assert.Equal(t, int64(2), byState["Review"])
	assert.Equal(t, int64(0), byState["Closed"])
}

func TestShutdownDetachesInstruments(t *testing.T) {
	collect := collectWorkflow(t)
	require.NoError(t, Shutdown(context.Background()))

	RecordCreated(context.Background(), types.AppTypeNew)
	assert.NotContains(t, collect(), MetricCreated)
}
