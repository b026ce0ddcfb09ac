// Package typist delivers transcribed text to the focused window by
// driving the desktop's own input tools.
package typist

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"speechcli/internal/errorsx"
)

// runner executes an external command and returns its error with stderr.
type runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func typingError(err error, what string) error {
	if err == nil {
		return nil
	}
	return errorsx.Wrap(fmt.Errorf("%s: %w", what, err), errorsx.ReasonTyping)
}
