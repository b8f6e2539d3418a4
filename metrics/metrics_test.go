package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.IncSpawned("veh")
	c.IncSpawned("veh")
	c.IncRegistrations("rsu")
	c.SetActiveGenerators("veh", 3)

	assert.Equal(t, 2., testutil.ToFloat64(c.Spawned.WithLabelValues("veh")))
	assert.Equal(t, 1., testutil.ToFloat64(c.Registrations.WithLabelValues("rsu")))
	assert.Equal(t, 3., testutil.ToFloat64(c.ActiveGenerators.WithLabelValues("veh")))
}

func TestCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	require.NoError(t, err)
	b, err := NewCollector(reg)
	require.NoError(t, err)
	a.IncSpawned("agent")
	assert.Equal(t, 1., testutil.ToFloat64(b.Spawned.WithLabelValues("agent")))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.IncSpawned("veh")
		c.IncRegistrations("tl")
		c.SetActiveGenerators("agent", 1)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.IncRegistrations("tl")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `mapping_registrations_total{kind="tl"} 1`))
}
