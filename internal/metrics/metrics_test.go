package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"speechcli/internal/audio"
	"speechcli/internal/errorsx"
	"speechcli/internal/session"
)

func TestSessionFinished(t *testing.T) {
	m := New(prometheus.NewRegistry())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	buf := &audio.Buffer{Samples: make([]int16, 16000), SampleRate: 16000, Channels: 1}

	m.SessionFinished(&session.Session{Started: start, Ended: start.Add(2 * time.Second), Audio: buf, Outcome: session.Succeeded})
	m.SessionFinished(&session.Session{Started: start, Ended: start.Add(5 * time.Second), Audio: buf, EndReason: session.TimedOut,
		Outcome: session.Failed, Err: errorsx.Errorf(errorsx.ReasonSTTRateLimit, "429")})
	m.SessionFinished(&session.Session{Outcome: session.Failed, Err: errorsx.Errorf(errorsx.ReasonAudioDevice, "busy")})

	if got := testutil.ToFloat64(m.SessionsTotal.WithLabelValues("succeeded")); got != 1 {
		t.Fatalf("succeeded = %v", got)
	}
	if got := testutil.ToFloat64(m.SessionsTotal.WithLabelValues("failed")); got != 2 {
		t.Fatalf("failed = %v", got)
	}
	if got := testutil.ToFloat64(m.SessionEnds.WithLabelValues("timed_out")); got != 1 {
		t.Fatalf("timed_out = %v", got)
	}
	if got := testutil.ToFloat64(m.TranscriptionErrors.WithLabelValues("stt_rate_limit")); got != 1 {
		t.Fatalf("rate limit errors = %v", got)
	}
	if got := testutil.CollectAndCount(m.TranscriptionErrors); got != 1 {
		t.Fatalf("audio errors must not count as transcription errors, got %d series", got)
	}
	if got := testutil.CollectAndCount(m.RecordingDuration); got != 1 {
		t.Fatalf("expected one histogram, got %d", got)
	}
}

func TestStateGaugeAndLatency(t *testing.T) {
	m := New(prometheus.NewRegistry())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.StateChanged(session.Idle, session.Arming)
	m.StateChanged(session.Arming, session.Recording)
	m.StateChanged(session.Recording, session.Transcribing)
	if got := testutil.ToFloat64(m.SessionState.WithLabelValues("transcribing")); got != 1 {
		t.Fatalf("transcribing gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.SessionState.WithLabelValues("idle")); got != 0 {
		t.Fatalf("idle gauge = %v", got)
	}
	now = now.Add(1500 * time.Millisecond)
	m.StateChanged(session.Transcribing, session.Typing)

	expected := `
# HELP speechcli_transcription_seconds Latency of transcription requests in seconds
# TYPE speechcli_transcription_seconds histogram
speechcli_transcription_seconds_bucket{le="0.1"} 0
speechcli_transcription_seconds_bucket{le="0.25"} 0
speechcli_transcription_seconds_bucket{le="0.5"} 0
speechcli_transcription_seconds_bucket{le="1"} 0
speechcli_transcription_seconds_bucket{le="2"} 1
speechcli_transcription_seconds_bucket{le="5"} 1
speechcli_transcription_seconds_bucket{le="10"} 1
speechcli_transcription_seconds_bucket{le="30"} 1
speechcli_transcription_seconds_bucket{le="+Inf"} 1
speechcli_transcription_seconds_sum 1.5
speechcli_transcription_seconds_count 1
`
	if err := testutil.CollectAndCompare(m.TranscriptionTime, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected histogram: %v", err)
	}
}

func TestServerEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SessionFinished(&session.Session{Outcome: session.Empty})

	ts := httptest.NewServer(NewServer("127.0.0.1:0", reg).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `speechcli_sessions_total{outcome="empty"} 1`) {
		t.Fatalf("sessions counter missing from /metrics:\n%s", body)
	}
}
