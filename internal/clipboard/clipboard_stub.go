//go:build !windows

// Package clipboard pastes text through the system clipboard.
package clipboard

import (
	"context"
	"errors"
)

// ErrUnsupported is returned outside Windows, where typing goes through
// xdotool or System Events instead.
var ErrUnsupported = errors.New("clipboard paste not supported on this platform")

func PasteText(ctx context.Context, text string) error {
	return ErrUnsupported
}
