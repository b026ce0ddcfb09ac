//go:build windows

// Package clipboard pastes text through the system clipboard.
package clipboard

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

const (
	settleDelay  = 80 * time.Millisecond
	restoreDelay = 120 * time.Millisecond
)

// PasteText writes text to the clipboard, sends Ctrl+V and puts the previous
// clipboard content back.
func PasteText(ctx context.Context, text string) error {
	orig, readErr := clipboard.ReadAll()
	if err := clipboard.WriteAll(text); err != nil {
		return err
	}
	if err := sleep(ctx, settleDelay); err != nil {
		return err
	}

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return err
	}

	// Paste reads the clipboard asynchronously in the target window.
	time.Sleep(restoreDelay)
	if readErr == nil {
		_ = clipboard.WriteAll(orig)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
