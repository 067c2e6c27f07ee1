package scache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestMetrics_RecordsRPCs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(provider.Meter("scache-test"))
	require.NoError(t, err)

	_, client, _ := startTestServer(t, testServerConfig(), metrics)
	ctx := context.Background()

	require.NoError(t, client.Put(ctx, "test", "k", []byte("v")))
	_, ok, err := client.Get(ctx, "test", "k")
	require.NoError(t, err)
	require.True(t, ok)

	// A miss is counted but is not an error.
	_, ok, err = client.Get(ctx, "test", "missing")
	require.NoError(t, err)
	require.False(t, ok)

	// An unknown cache is an error.
	_, _, err = client.Get(ctx, "nope", "k")
	require.Error(t, err)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(4), sums["scache.rpc.total"])
	assert.Equal(t, int64(1), sums["scache.rpc.errors"])
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics()
	require.NotNil(t, m)
	m.RecordRPC(context.Background(), methodGet, 0, nil)
}
