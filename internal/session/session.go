// Package session runs the push-to-talk cycle: wait for the key, record
// while it is held, transcribe the audio and type the result.
//
// One Machine owns the whole cycle and processes one session at a time.
// Collaborators (recorder, transcriber, typist, clock) are injected so the
// loop can be driven entirely from tests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"speechcli/internal/audio"
	"speechcli/internal/keys"
)

// ErrMonitorClosed is returned by Run when the key event stream ends.
var ErrMonitorClosed = errors.New("session: key monitor closed")

// State is the phase of the machine.
type State int32

const (
	Idle State = iota
	Arming
	Recording
	Transcribing
	Typing
	Aborted
)

var stateNames = [...]string{"idle", "arming", "recording", "transcribing", "typing", "aborted"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// EndReason says why recording stopped.
type EndReason int

const (
	Released EndReason = iota
	TimedOut
)

func (r EndReason) String() string {
	if r == TimedOut {
		return "timed_out"
	}
	return "released"
}

// Outcome is the final result of a session.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	Empty
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "empty"
	}
}

// Session is one push-to-talk cycle. It lives only in memory.
type Session struct {
	ID        uuid.UUID
	Started   time.Time
	Ended     time.Time
	EndReason EndReason
	Audio     *audio.Buffer
	Text      string
	Outcome   Outcome
	Err       error
}

// Duration is the length of the recording phase.
func (s *Session) Duration() time.Duration {
	if s.Ended.IsZero() {
		return 0
	}
	return s.Ended.Sub(s.Started)
}

// Capture is an open recording. Exactly one of End or Close is called.
type Capture interface {
	// End stops recording and returns everything captured. A capture with
	// no frames yields an empty buffer, not an error.
	End() (*audio.Buffer, error)
	// Close releases the device and discards the audio.
	Close() error
}

// Recorder opens captures on the audio input.
type Recorder interface {
	Begin(ctx context.Context) (Capture, error)
}

// Transcriber turns a finished buffer into text.
type Transcriber interface {
	Transcribe(ctx context.Context, buf *audio.Buffer) (string, error)
}

// Typist injects text into the focused window.
type Typist interface {
	Type(ctx context.Context, text string) error
	PressEnter(ctx context.Context) error
	ReleaseKey(ctx context.Context, key keys.Key) error
}

// Clock is the time source of the machine.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Observer is notified of every state change and every finished session.
// Calls happen on the machine goroutine and must not block.
type Observer interface {
	StateChanged(from, to State)
	SessionFinished(s *Session)
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }
