package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/profilesync/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest("ok")
	m.ObserveRequest("ok")
	m.ObserveRefresh("success")
	m.ObserveSave("appearance", "saved")

	assert.Equal(t, 2.0, m.RequestCount("ok"))
	assert.Equal(t, 1.0, m.RefreshCount("success"))
	assert.Equal(t, 0.0, m.RefreshCount("failure"))
	assert.Equal(t, 1.0, m.SaveCount("appearance", "saved"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("ok")
		m.ObserveRefresh("success")
		m.ObserveSave("privacy", "failed")
	})
	assert.Zero(t, m.RequestCount("ok"))
	assert.Zero(t, m.RefreshCount("success"))
	assert.Zero(t, m.SaveCount("privacy", "failed"))
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.ObserveRefresh("failure")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `profilesync_token_refreshes_total{result="failure"} 1`)
}
