// Package platform picks the key listener and typist for the host OS.
// The choice is made once at startup and injected into the daemon.
package platform

import (
	"speechcli/internal/hotkey"
	"speechcli/internal/session"
)

// Handler is everything the daemon needs from the desktop.
type Handler interface {
	Name() string
	hotkey.Listener
	session.Typist
}

type handler struct {
	name string
	hotkey.Listener
	session.Typist
}

func (h *handler) Name() string { return h.name }

// Compose builds a Handler from a listener and a typist.
func Compose(name string, l hotkey.Listener, t session.Typist) Handler {
	return &handler{name: name, Listener: l, Typist: t}
}
