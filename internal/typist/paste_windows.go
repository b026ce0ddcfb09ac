//go:build windows

package typist

import (
	"context"
	"syscall"

	"github.com/micmonay/keybd_event"

	"speechcli/internal/clipboard"
	"speechcli/internal/keys"
)

const keyeventfKeyUp = 0x0002

var procKeybdEvent = syscall.NewLazyDLL("user32.dll").NewProc("keybd_event")

// Paste puts the text on the clipboard and sends Ctrl+V. Unicode survives
// this path, which SendInput key by key does not do reliably.
type Paste struct{}

// NewPaste returns the Windows typist.
func NewPaste() (*Paste, error) { return &Paste{}, nil }

func (Paste) Type(ctx context.Context, text string) error {
	return typingError(clipboard.PasteText(ctx, text), "paste text")
}

func (Paste) PressEnter(ctx context.Context) error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return typingError(err, "press enter")
	}
	kb.SetKeys(keybd_event.VK_ENTER)
	return typingError(kb.Launching(), "press enter")
}

// ReleaseKey sends a key-up for key's virtual-key code.
func (Paste) ReleaseKey(ctx context.Context, key keys.Key) error {
	if key.WinVK == 0 {
		return nil
	}
	procKeybdEvent.Call(uintptr(key.WinVK), 0, keyeventfKeyUp, 0)
	return nil
}
