package typist

import (
	"context"
	"errors"
	"os/exec"

	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
)

// Xdotool types through the X server with xdotool.
type Xdotool struct {
	bin string
	run runner
}

// NewXdotool finds xdotool on PATH.
func NewXdotool() (*Xdotool, error) {
	bin, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, errorsx.Wrap(errors.New("xdotool not found; install it with: sudo apt install xdotool"), errorsx.ReasonConfiguration)
	}
	return &Xdotool{bin: bin, run: execRunner}, nil
}

func xdotoolTypeArgs(text string) []string {
	return []string{"type", "--delay", "0", "--clearmodifiers", "--", text}
}

func xdotoolKeyArgs(keysym string) []string {
	return []string{"key", "--clearmodifiers", keysym}
}

func xdotoolKeyUpArgs(keysym string) []string {
	return []string{"keyup", "--clearmodifiers", keysym}
}

func (x *Xdotool) Type(ctx context.Context, text string) error {
	return typingError(x.run(ctx, x.bin, xdotoolTypeArgs(text)...), "type text")
}

func (x *Xdotool) PressEnter(ctx context.Context) error {
	return typingError(x.run(ctx, x.bin, xdotoolKeyArgs("Return")...), "press enter")
}

// ReleaseKey sends a synthetic key-up for key's X keysym.
func (x *Xdotool) ReleaseKey(ctx context.Context, key keys.Key) error {
	if key.XKeysym == "" {
		return nil
	}
	return typingError(x.run(ctx, x.bin, xdotoolKeyUpArgs(key.XKeysym)...), "release "+key.Name)
}
