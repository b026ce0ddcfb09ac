//go:build darwin

package hotkey

import (
	"context"

	hook "github.com/robotn/gohook"

	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
	"speechcli/internal/logging"
)

// TapListener uses a global event tap. The terminal or app bundle running
// the daemon needs Accessibility permission.
type TapListener struct{}

// Listen matches raw macOS virtual key codes against key.
func (TapListener) Listen(ctx context.Context, key keys.Key, out chan<- Event) error {
	if !key.OnMac() {
		return errorsx.Errorf(errorsx.ReasonInputDevice, "key %s is not available on macOS", key.Name)
	}
	logger := logging.WithComponent("hotkey")
	logger.Info().Str("key", key.Name).Msg("listening (grant Accessibility permission if nothing happens)")

	events := hook.Start()
	defer hook.End()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return errorsx.Errorf(errorsx.ReasonInputDevice, "event tap closed")
			}
			if ev.Rawcode != key.MacVK {
				continue
			}
			t, ok := tapTransition(ev.Kind)
			if !ok {
				continue
			}
			if !emit(ctx, out, key, t) {
				return nil
			}
		}
	}
}

// tapTransition maps a gohook event kind onto a transition. KeyHold is the
// physical press (modifiers included); KeyDown is the typed-character event
// and only fires for printable keys, so it is ignored.
func tapTransition(kind uint8) (Transition, bool) {
	switch kind {
	case hook.KeyHold:
		return Down, true
	case hook.KeyUp:
		return Up, true
	}
	return 0, false
}
