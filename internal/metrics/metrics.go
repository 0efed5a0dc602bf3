// Package metrics counts transport, refresh and save outcomes. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "profilesync"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	saves     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests sent to the remote API, by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts, by result.",
		}, []string{"result"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preference_saves_total",
			Help:      "Preference panel saves, by panel and outcome.",
		}, []string{"panel", "outcome"}),
	}
	m.registry.MustRegister(m.requests, m.refreshes, m.saves)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSave(panel, outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(panel, outcome).Inc()
}

// RequestCount reports the request counter for outcome.
func (m *Metrics) RequestCount(outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.requests.WithLabelValues(outcome))
}

// RefreshCount reports the refresh counter for result.
func (m *Metrics) RefreshCount(result string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.refreshes.WithLabelValues(result))
}

// SaveCount reports the save counter for panel and outcome.
func (m *Metrics) SaveCount(panel, outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.saves.WithLabelValues(panel, outcome))
}
