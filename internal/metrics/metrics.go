// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors registered on one registry.
type Metrics struct {
	reg *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	KeySubmissions   *prometheus.CounterVec
	ChallengesSolved *prometheus.CounterVec
	LiveTokens       prometheus.GaugeFunc
	ChainListeners   prometheus.GaugeFunc
}

// New creates and registers the collectors on a fresh registry. liveTokens
// reports the size of the token registry at scrape time; it may be nil.
func New(liveTokens func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopguard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		KeySubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopguard",
			Name:      "key_submissions_total",
			Help:      "Key submissions by classifier verdict.",
		}, []string{"verdict"}),
		ChallengesSolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopguard",
			Name:      "challenges_solved_total",
			Help:      "Challenges flipped to solved.",
		}, []string{"challenge"}),
	}
	reg.MustRegister(m.HTTPRequests, m.KeySubmissions, m.ChallengesSolved)
	if liveTokens != nil {
		m.LiveTokens = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "shopguard",
			Name:      "live_session_tokens",
			Help:      "Session tokens currently tracked by the token registry.",
		}, liveTokens)
		reg.MustRegister(m.LiveTokens)
	}
	return m
}

// TrackChainListeners exports the number of registered chain listeners,
// read from fn at scrape time. Calling it again has no effect.
func (m *Metrics) TrackChainListeners(fn func() float64) {
	if m == nil || fn == nil || m.ChainListeners != nil {
		return
	}
	m.ChainListeners = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "shopguard",
		Name:      "chain_listeners",
		Help:      "Chain event listeners currently registered.",
	}, fn)
	m.reg.MustRegister(m.ChainListeners)
}

// ObserveRequest counts one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

// ObserveKeySubmission counts a classifier verdict.
func (m *Metrics) ObserveKeySubmission(verdict string) {
	if m == nil {
		return
	}
	m.KeySubmissions.WithLabelValues(verdict).Inc()
}

// ObserveSolved counts a newly solved challenge.
func (m *Metrics) ObserveSolved(challenge string) {
	if m == nil {
		return
	}
	m.ChallengesSolved.WithLabelValues(challenge).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
