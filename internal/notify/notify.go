// Package notify shows desktop notifications for session milestones.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"speechcli/internal/errorsx"
	"speechcli/internal/logging"
	"speechcli/internal/session"
)

const (
	title     = "speechcli"
	queueSize = 4
)

// Notifier is a session observer that pops a notification when recording
// starts and when a session ends. beeep shells out, so notifications are
// delivered by a worker goroutine and the session loop never waits on them.
type Notifier struct {
	send  func(title, message string) error
	log   zerolog.Logger
	queue chan string
	done  chan struct{}
	once  sync.Once
}

// New returns a Notifier backed by beeep. Call Close when done.
func New() *Notifier {
	return newNotifier(func(t, m string) error { return beeep.Notify(t, m, "") })
}

func newNotifier(send func(title, message string) error) *Notifier {
	n := &Notifier{
		send:  send,
		log:   logging.WithComponent("notify"),
		queue: make(chan string, queueSize),
		done:  make(chan struct{}),
	}
	go n.loop()
	return n
}

func (n *Notifier) loop() {
	defer close(n.done)
	for msg := range n.queue {
		if err := n.send(title, msg); err != nil {
			n.log.Debug().Err(err).Msg("notification failed")
		}
	}
}

// Notify queues one notification. When the queue is full the message is
// dropped.
func (n *Notifier) Notify(message string) {
	select {
	case n.queue <- message:
	default:
		n.log.Debug().Str("message", message).Msg("notification queue full; dropped")
	}
}

// Close delivers what is queued and stops the worker. Notify must not be
// called afterwards.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.queue) })
	<-n.done
}

func (n *Notifier) StateChanged(from, to session.State) {
	if to == session.Recording {
		n.Notify("Recording started")
	}
}

func (n *Notifier) SessionFinished(s *session.Session) {
	n.Notify(Message(s))
}

// Message is the notification text for a finished session.
func Message(s *session.Session) string {
	switch s.Outcome {
	case session.Succeeded:
		return "Text typed"
	case session.Empty:
		if s.Audio.Empty() {
			return "No audio captured"
		}
		return "Empty result from ASR"
	}
	switch errorsx.Reason(s.Err) {
	case errorsx.ReasonSTTAuth:
		return "Transcription failed: check the API key"
	case errorsx.ReasonSTTRateLimit:
		return "Transcription failed: rate limited"
	case errorsx.ReasonSTTConnect:
		return "Transcription failed: service unreachable"
	case errorsx.ReasonTyping:
		return "Typing failed"
	case errorsx.ReasonAudioDevice:
		return "Recording failed"
	}
	return "Transcription failed"
}
