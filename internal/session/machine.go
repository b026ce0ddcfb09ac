package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"speechcli/internal/errorsx"
	"speechcli/internal/hotkey"
	"speechcli/internal/keys"
	"speechcli/internal/logging"
)

// Config is the immutable part of the machine.
type Config struct {
	Key            keys.Key
	MaxDuration    time.Duration // zero disables the timeout
	PressEnter     bool
	LogTranscripts bool
}

// Deps are the collaborators of the machine. Clock defaults to the wall clock.
type Deps struct {
	Recorder    Recorder
	Transcriber Transcriber
	Typist      Typist
	Clock       Clock
	Observers   []Observer
}

// Machine is the session loop.
type Machine struct {
	cfg   Config
	deps  Deps
	clock Clock
	log   zerolog.Logger

	state     atomic.Int32
	idleSince time.Time
}

// New returns an idle machine.
func New(cfg Config, deps Deps) *Machine {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &Machine{
		cfg:       cfg,
		deps:      deps,
		clock:     clock,
		log:       logging.WithComponent("session"),
		idleSince: clock.Now(),
	}
}

// State returns the current state. Safe to call from any goroutine.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// Run consumes key events until ctx is done (returns nil) or events is
// closed (returns ErrMonitorClosed). Sessions never overlap: events that
// arrive while a session is running are consumed by that session or dropped.
func (m *Machine) Run(ctx context.Context, events <-chan hotkey.Event) error {
	m.log.Info().Str("key", m.cfg.Key.Name).Dur("max_duration", m.cfg.MaxDuration).Msg("waiting for push-to-talk key")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrMonitorClosed
			}
			if ev.Key.Name != m.cfg.Key.Name || ev.Transition != hotkey.Down {
				continue
			}
			if !ev.At.IsZero() && ev.At.Before(m.idleSince) {
				m.log.Debug().Time("at", ev.At).Msg("dropping key press from a busy period")
				continue
			}
			if err := m.runSession(ctx, events); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
		}
	}
}

// runSession drives one cycle from Arming back to Idle. It only returns an
// error when the loop itself must stop.
func (m *Machine) runSession(ctx context.Context, events <-chan hotkey.Event) error {
	s := &Session{ID: uuid.New(), Started: m.clock.Now()}
	log := m.log.With().Str("session", s.ID.String()).Logger()

	m.setState(Arming)
	capture, err := m.deps.Recorder.Begin(ctx)
	if err != nil {
		s.Err = errorsx.Wrap(err, errorsx.ReasonAudioDevice)
		log.Error().Err(s.Err).Str("reason", string(errorsx.Reason(s.Err))).Msg("could not start recording")
		m.abort(s)
		return nil
	}

	var timeout <-chan time.Time
	if m.cfg.MaxDuration > 0 {
		timeout = m.clock.After(m.cfg.MaxDuration)
	}
	m.setState(Recording)
	log.Info().Msg("recording")

	reason, err := m.await(ctx, events, timeout)
	if err != nil {
		if closeErr := capture.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("capture close failed")
		}
		log.Info().Err(err).Msg("recording interrupted")
		m.setState(Idle)
		m.idleSince = m.clock.Now()
		return err
	}
	s.EndReason = reason

	released := false
	if reason == TimedOut {
		log.Warn().Dur("max_duration", m.cfg.MaxDuration).Msg("max recording duration reached")
		if m.cfg.Key.Modifier {
			m.release(ctx, log)
			released = true
		}
	}

	buf, err := capture.End()
	s.Ended = m.clock.Now()
	s.Audio = buf
	if err != nil {
		s.Err = errorsx.Wrap(err, errorsx.ReasonAudioDevice)
		log.Error().Err(s.Err).Msg("recording failed")
		m.abort(s)
		return nil
	}
	if buf.Empty() {
		s.Outcome = Empty
		log.Info().Str("end", reason.String()).Msg("no audio captured; skipping transcription")
		m.finish(s)
		return nil
	}
	log.Info().Str("end", reason.String()).Dur("audio", buf.Duration()).Msg("recording finished")

	m.setState(Transcribing)
	start := m.clock.Now()
	text, err := m.deps.Transcriber.Transcribe(ctx, buf)
	if err != nil {
		s.Err = err
		log.Error().Err(err).Str("reason", string(errorsx.Reason(err))).Msg("transcription failed")
		m.abort(s)
		return nil
	}
	s.Text = strings.TrimSpace(text)
	ev := log.Info().Dur("took", m.clock.Now().Sub(start)).Int("chars", len(s.Text))
	if m.cfg.LogTranscripts {
		ev = ev.Str("text", s.Text)
	}
	ev.Msg("transcription received")
	if s.Text == "" {
		s.Outcome = Empty
		m.finish(s)
		return nil
	}

	m.setState(Typing)
	if m.cfg.Key.Modifier && !released {
		m.release(ctx, log)
	}
	if err := m.deps.Typist.Type(ctx, s.Text); err != nil {
		s.Err = errorsx.Wrap(err, errorsx.ReasonTyping)
		log.Error().Err(s.Err).Msg("typing failed")
		m.abort(s)
		return nil
	}
	if m.cfg.PressEnter {
		if err := m.deps.Typist.PressEnter(ctx); err != nil {
			s.Err = errorsx.Wrap(err, errorsx.ReasonTyping)
			log.Error().Err(s.Err).Msg("enter key failed")
			m.abort(s)
			return nil
		}
	}
	s.Outcome = Succeeded
	m.finish(s)
	return nil
}

// await blocks until the key is released or the timeout fires. Presses
// during recording are ignored.
func (m *Machine) await(ctx context.Context, events <-chan hotkey.Event, timeout <-chan time.Time) (EndReason, error) {
	for {
		select {
		case <-ctx.Done():
			return Released, ctx.Err()
		case <-timeout:
			return TimedOut, nil
		case ev, ok := <-events:
			if !ok {
				return Released, ErrMonitorClosed
			}
			if ev.Key.Name == m.cfg.Key.Name && ev.Transition == hotkey.Up {
				return Released, nil
			}
		}
	}
}

// release lifts a held modifier so typed text is not shifted.
func (m *Machine) release(ctx context.Context, log zerolog.Logger) {
	if err := m.deps.Typist.ReleaseKey(ctx, m.cfg.Key); err != nil {
		log.Warn().Err(err).Str("key", m.cfg.Key.Name).Msg("modifier release failed")
	}
}

func (m *Machine) abort(s *Session) {
	s.Outcome = Failed
	m.setState(Aborted)
	m.finish(s)
}

func (m *Machine) finish(s *Session) {
	if s.Ended.IsZero() {
		s.Ended = m.clock.Now()
	}
	m.setState(Idle)
	m.idleSince = m.clock.Now()
	for _, o := range m.deps.Observers {
		o.SessionFinished(s)
	}
	m.log.Debug().Str("session", s.ID.String()).Str("outcome", s.Outcome.String()).Msg("session finished")
}

func (m *Machine) setState(to State) {
	from := State(m.state.Swap(int32(to)))
	if from == to {
		return
	}
	for _, o := range m.deps.Observers {
		o.StateChanged(from, to)
	}
}
