package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Feedback(ResultOK)
	m.Feedback(ResultOK)
	m.Email("feedback", ResultError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedbackSubmissions.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("feedback", ResultError)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Feedback(ResultOK)
		m.Waitlist(ResultError)
		m.Email("x", ResultOK)
		m.Presence("online")
	})
}
