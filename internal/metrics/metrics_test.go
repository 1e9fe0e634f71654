package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.FetchTotal.WithLabelValues(OutcomeSuccess, "").Inc()
	m.TokenFieldFallback.WithLabelValues("decimals").Add(2)

	require.Equal(t, float64(1), testutil.ToFloat64(m.FetchTotal.WithLabelValues(OutcomeSuccess, "")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.TokenFieldFallback.WithLabelValues("decimals")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	t.Run("double registration", func(t *testing.T) {
		t.Parallel()

		_, err := New(reg)
		require.Error(t, err)
	})
}

func TestNewNop(t *testing.T) {
	t.Parallel()

	m := NewNop()
	require.NotNil(t, m)
	m.BatchFailures.WithLabelValues(PhaseToken).Inc()
	require.Equal(t, float64(1), testutil.ToFloat64(m.BatchFailures.WithLabelValues(PhaseToken)))
}
