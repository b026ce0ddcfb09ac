//go:build darwin

package platform

import (
	"speechcli/internal/hotkey"
	"speechcli/internal/typist"
)

// New returns the macOS handler: an event tap for the key, System Events
// for typing.
func New() (Handler, error) {
	t, err := typist.NewAppleScript()
	if err != nil {
		return nil, err
	}
	return Compose("macos", hotkey.TapListener{}, t), nil
}
