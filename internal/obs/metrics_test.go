package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, ParseBucketsCSV(""))
	require.Nil(t, ParseBucketsCSV("  ,  "))
	require.Equal(t, []float64{5, 10.5, 250}, ParseBucketsCSV("5, 10.5,abc,-1,0,250"))
}

func TestNewHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewHTTPMetrics("toko_checkout", []float64{50, 10, 10}, reg)
	second := NewHTTPMetrics("toko_checkout", nil, reg)

	require.Same(t, first.ReqTotal, second.ReqTotal)
	require.Same(t, first.ReqDur, second.ReqDur)
	require.Equal(t, first.InFlight, second.InFlight)
}

func TestNewHTTPMetricsDoesNotMutateBuckets(t *testing.T) {
	buckets := []float64{100, 1}
	NewHTTPMetrics("toko_checkout", buckets, prometheus.NewRegistry())
	require.Equal(t, []float64{100, 1}, buckets)
}

func TestDurationMillis(t *testing.T) {
	require.InDelta(t, 1500.0, DurationMillis(1500*time.Millisecond), 1e-9)
	require.InDelta(t, 0.25, DurationMillis(250*time.Microsecond), 1e-9)
}
