package obs_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/obs"
)

func TestDomainMetricsObservers(t *testing.T) {
	obs.MustRegisterDomainMetrics("toko_checkout", prometheus.NewRegistry())

	before := testutil.ToFloat64(obs.CatalogLookupTotal.WithLabelValues("postgres", "error"))
	obs.ObserveCatalogLookup("postgres", errors.New("down"))
	require.Equal(t, before+1, testutil.ToFloat64(obs.CatalogLookupTotal.WithLabelValues("postgres", "error")))

	hits := testutil.ToFloat64(obs.CatalogCacheTotal.WithLabelValues("hit"))
	obs.ObserveCatalogCache("hit", 3)
	obs.ObserveCatalogCache("hit", 0)
	require.Equal(t, hits+3, testutil.ToFloat64(obs.CatalogCacheTotal.WithLabelValues("hit")))

	builds := testutil.ToFloat64(obs.CheckoutBuildTotal.WithLabelValues("ok"))
	obs.ObserveCheckoutBuild("ok", 12)
	require.Equal(t, builds+1, testutil.ToFloat64(obs.CheckoutBuildTotal.WithLabelValues("ok")))
	require.NotZero(t, testutil.CollectAndCount(obs.CheckoutBuildDuration))
}
