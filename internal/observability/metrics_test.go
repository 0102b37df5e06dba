package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/oauth2/redirect", "GET", 302, 10*time.Millisecond)
	m.RecordRequest("/oauth2/redirect", "GET", 302, 5*time.Millisecond)
	m.RecordError("/login", "POST", "REJECTED")
	m.RecordAuthEvent("session_started")
	m.RecordIdentityCall("login", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/oauth2/redirect", "GET", "302")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/login", "POST", "REJECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("session_started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.identityCalls.WithLabelValues("login", "ok")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAuthEvent("x")
		m.RecordIdentityCall("x", "ok")
	})
}
