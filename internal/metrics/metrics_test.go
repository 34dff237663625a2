package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.CompletionRequests.WithLabelValues("hint", "success").Inc()
	m.Submissions.WithLabelValues("objective_quiz").Add(2)
	m.ActiveSessions.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CompletionRequests.WithLabelValues("hint", "success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Submissions.WithLabelValues("objective_quiz")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ActiveSessions))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["revision_completion_requests_total"])
	assert.True(t, names["revision_active_sessions"])
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.PersistFailures.WithLabelValues("essay").Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.PersistFailures.WithLabelValues("essay")))
}
