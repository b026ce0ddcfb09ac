//go:build linux

package platform

import (
	"speechcli/internal/hotkey"
	"speechcli/internal/typist"
)

// New returns the Linux handler: evdev for the key, xdotool for typing.
// Reading /dev/input usually needs membership in the input group.
func New() (Handler, error) {
	t, err := typist.NewXdotool()
	if err != nil {
		return nil, err
	}
	return Compose("linux", hotkey.EvdevListener{}, t), nil
}
