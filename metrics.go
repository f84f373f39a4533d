package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the auth collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	denials       *prometheus.CounterVec
	hashWait      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg
// when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "guard_denials_total",
			Help:      "Requests rejected by a guard.",
		}, []string{"guard"}),
		hashWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "auth",
			Name:      "hash_wait_seconds",
			Help:      "Time spent waiting for a password hashing slot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.logins, m.registrations, m.denials, m.hashWait)
	}

	return m
}

func (m *Metrics) observeLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeDenial(guard string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(guard).Inc()
}

func (m *Metrics) observeHashWait(d time.Duration) {
	if m == nil {
		return
	}
	m.hashWait.Observe(d.Seconds())
}
