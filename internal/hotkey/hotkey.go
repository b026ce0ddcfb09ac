// Package hotkey reports press and release transitions of the push-to-talk key.
package hotkey

import (
	"context"
	"time"

	"speechcli/internal/keys"
)

// Transition is the direction of a key event.
type Transition int

const (
	Down Transition = iota
	Up
)

func (t Transition) String() string {
	if t == Down {
		return "down"
	}
	return "up"
}

// Event is a single key transition. At is when the listener observed it.
type Event struct {
	Key        keys.Key
	Transition Transition
	At         time.Time
}

// Listener emits transitions of one key until ctx is done. Implementations
// block, and must not close out.
type Listener interface {
	Listen(ctx context.Context, key keys.Key, out chan<- Event) error
}

// Dedup forwards events from in to out, dropping auto-repeat downs and ups
// that have no matching down. It returns when in is closed or ctx is done.
func Dedup(ctx context.Context, in <-chan Event, out chan<- Event) {
	held := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			name := ev.Key.Name
			switch ev.Transition {
			case Down:
				if held[name] {
					continue
				}
				held[name] = true
			case Up:
				if !held[name] {
					continue
				}
				delete(held, name)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// emit sends ev unless ctx is done first.
func emit(ctx context.Context, out chan<- Event, key keys.Key, t Transition) bool {
	select {
	case out <- Event{Key: key, Transition: t, At: time.Now()}:
		return true
	case <-ctx.Done():
		return false
	}
}
