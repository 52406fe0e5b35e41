package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRequestStarted_RecordsCounterAndDuration(t *testing.T) {
	reader := metric.NewManualReader()
	obs, err := NewWithReader("provider-directory-test", reader)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	done := obs.RequestStarted(ctx, "/api/chat")

	active := collect(t, reader)["http.server.active_requests"].Data.(metricdata.Sum[int64])
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(1), active.DataPoints[0].Value)

	done(200, 15*time.Millisecond)

	metrics := collect(t, reader)

	requests := metrics["http.server.requests"].Data.(metricdata.Sum[int64])
	require.Len(t, requests.DataPoints, 1)
	assert.Equal(t, int64(1), requests.DataPoints[0].Value)

	status, ok := requests.DataPoints[0].Attributes.Value(attribute.Key("status"))
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())

	duration := metrics["http.server.duration"].Data.(metricdata.Histogram[float64])
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)
	assert.InDelta(t, 15.0, duration.DataPoints[0].Sum, 0.001)

	active = metrics["http.server.active_requests"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(0), active.DataPoints[0].Value)
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RequestStarted(context.Background(), "/health")(200, time.Millisecond)
	})
	assert.NoError(t, obs.Shutdown(context.Background()))
}
