// Package metrics exposes Prometheus metrics for push-to-talk sessions.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"speechcli/internal/errorsx"
	"speechcli/internal/session"
)

const namespace = "speechcli"

// Metrics holds all collectors. It is a session observer.
type Metrics struct {
	SessionsTotal       *prometheus.CounterVec
	SessionEnds         *prometheus.CounterVec
	TranscriptionErrors *prometheus.CounterVec
	RecordingDuration   prometheus.Histogram
	TranscriptionTime   prometheus.Histogram
	SessionState        *prometheus.GaugeVec

	mu              sync.Mutex
	transcribeStart time.Time
	now             func() time.Time
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		SessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished push-to-talk sessions by outcome",
		}, []string{"outcome"}),
		SessionEnds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_end_total",
			Help:      "Recordings ended by key release or by timeout",
		}, []string{"reason"}),
		TranscriptionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_errors_total",
			Help:      "Failed transcription requests by error class",
		}, []string{"reason"}),
		RecordingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recording_seconds",
			Help:      "Length of recordings in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		TranscriptionTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_seconds",
			Help:      "Latency of transcription requests in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		SessionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_state",
			Help:      "1 for the current state of the session machine",
		}, []string{"state"}),
		now: time.Now,
	}
	m.SessionState.WithLabelValues(session.Idle.String()).Set(1)
	return m
}

func (m *Metrics) StateChanged(from, to session.State) {
	m.SessionState.WithLabelValues(from.String()).Set(0)
	m.SessionState.WithLabelValues(to.String()).Set(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case to == session.Transcribing:
		m.transcribeStart = m.now()
	case from == session.Transcribing && !m.transcribeStart.IsZero():
		m.TranscriptionTime.Observe(m.now().Sub(m.transcribeStart).Seconds())
		m.transcribeStart = time.Time{}
	}
}

func (m *Metrics) SessionFinished(s *session.Session) {
	m.SessionsTotal.WithLabelValues(s.Outcome.String()).Inc()
	if s.Audio != nil {
		m.SessionEnds.WithLabelValues(s.EndReason.String()).Inc()
		m.RecordingDuration.Observe(s.Duration().Seconds())
	}
	if errorsx.IsTranscription(s.Err) {
		m.TranscriptionErrors.WithLabelValues(string(errorsx.Reason(s.Err))).Inc()
	}
}
