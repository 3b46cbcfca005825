package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistersEveryCollector(t *testing.T) {
	r := New()
	r.ClausesGenerated.WithLabelValues("binary_resolution").Inc()
	r.ContainerSize.WithLabelValues("passive").Set(3)
	r.SelectionLatency.Observe(0.01)
	r.NodePromotions.Inc()

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestTwoRegistriesDoNotCollide(t *testing.T) {
	require.NotPanics(t, func() {
		New()
		New()
	})
}
