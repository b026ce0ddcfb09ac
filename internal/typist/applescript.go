package typist

import (
	"context"
	"errors"
	"os/exec"

	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
)

// macOS virtual key code of Return.
const returnKeyCode = "36"

// AppleScript types through System Events. The terminal running the daemon
// needs the Accessibility permission.
type AppleScript struct {
	bin string
	run runner
}

// NewAppleScript finds osascript on PATH.
func NewAppleScript() (*AppleScript, error) {
	bin, err := exec.LookPath("osascript")
	if err != nil {
		return nil, errorsx.Wrap(errors.New("osascript not found"), errorsx.ReasonConfiguration)
	}
	return &AppleScript{bin: bin, run: execRunner}, nil
}

// The text is passed as an argument so it never needs quoting.
func keystrokeArgs(text string) []string {
	return []string{
		"-e", "on run argv",
		"-e", `tell application "System Events" to keystroke (item 1 of argv)`,
		"-e", "end run",
		"--", text,
	}
}

func keyCodeArgs(code string) []string {
	return []string{"-e", `tell application "System Events" to key code ` + code}
}

func keyUpArgs(modifier string) []string {
	return []string{"-e", `tell application "System Events" to key up ` + modifier}
}

// appleModifier maps a modifier key to its System Events name.
func appleModifier(key keys.Key) string {
	switch key.Name {
	case "shift_l", "shift_r":
		return "shift"
	case "ctrl_l", "ctrl_r":
		return "control"
	case "alt_l", "alt_r":
		return "option"
	case "cmd_l", "cmd_r":
		return "command"
	}
	return ""
}

func (a *AppleScript) Type(ctx context.Context, text string) error {
	return typingError(a.run(ctx, a.bin, keystrokeArgs(text)...), "type text")
}

func (a *AppleScript) PressEnter(ctx context.Context) error {
	return typingError(a.run(ctx, a.bin, keyCodeArgs(returnKeyCode)...), "press enter")
}

func (a *AppleScript) ReleaseKey(ctx context.Context, key keys.Key) error {
	mod := appleModifier(key)
	if mod == "" {
		return nil
	}
	return typingError(a.run(ctx, a.bin, keyUpArgs(mod)...), "release "+key.Name)
}
