package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"speechcli/internal/audio"
	"speechcli/internal/errorsx"
	"speechcli/internal/session"
)

func TestMessage(t *testing.T) {
	speech := &audio.Buffer{Samples: make([]int16, 160), SampleRate: 16000, Channels: 1}
	cases := []struct {
		name string
		s    *session.Session
		want string
	}{
		{"ok", &session.Session{Outcome: session.Succeeded, Audio: speech}, "Text typed"},
		{"silence", &session.Session{Outcome: session.Empty}, "No audio captured"},
		{"blank", &session.Session{Outcome: session.Empty, Audio: speech}, "Empty result from ASR"},
		{"rate", &session.Session{Outcome: session.Failed, Err: errorsx.Errorf(errorsx.ReasonSTTRateLimit, "429")}, "Transcription failed: rate limited"},
		{"typing", &session.Session{Outcome: session.Failed, Err: errorsx.Wrap(errors.New("x"), errorsx.ReasonTyping)}, "Typing failed"},
		{"plain", &session.Session{Outcome: session.Failed, Err: errors.New("boom")}, "Transcription failed"},
	}
	for _, tc := range cases {
		if got := Message(tc.s); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestNotifierObserves(t *testing.T) {
	var mu sync.Mutex
	var got []string
	n := newNotifier(func(title, message string) error {
		mu.Lock()
		got = append(got, message)
		mu.Unlock()
		return errors.New("no notification daemon")
	})

	n.StateChanged(session.Idle, session.Arming)
	n.StateChanged(session.Arming, session.Recording)
	n.SessionFinished(&session.Session{Outcome: session.Succeeded})
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "Recording started" || got[1] != "Text typed" {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestNotifierDoesNotBlockObserver(t *testing.T) {
	release := make(chan struct{})
	n := newNotifier(func(title, message string) error {
		<-release
		return nil
	})

	returned := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+3; i++ {
			n.StateChanged(session.Arming, session.Recording)
			n.SessionFinished(&session.Session{Outcome: session.Succeeded})
		}
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatalf("observer calls blocked on a slow notification")
	}
	close(release)
	n.Close()
}
