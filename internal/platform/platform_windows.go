//go:build windows

package platform

import (
	"speechcli/internal/hotkey"
	"speechcli/internal/typist"
)

// New returns the Windows handler: a low-level keyboard hook for the key,
// clipboard paste for typing.
func New() (Handler, error) {
	t, err := typist.NewPaste()
	if err != nil {
		return nil, err
	}
	return Compose("windows", hotkey.HookListener{}, t), nil
}
