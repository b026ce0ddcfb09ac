//go:build windows

package hotkey

import (
	"context"
	"fmt"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
	"speechcli/internal/logging"
)

const (
	whKeyboardLL  = 13
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmQuit        = 0x0012
	llkhfInjected = 0x10
)

type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	PtX     int32
	PtY     int32
}

// HookListener installs a WH_KEYBOARD_LL hook. Unlike RegisterHotKey it sees
// key releases, which push-to-talk needs. Events are passed through.
type HookListener struct{}

// Listen runs the hook on a locked OS thread until ctx is done.
func (HookListener) Listen(ctx context.Context, key keys.Key, out chan<- Event) error {
	if key.WinVK == 0 {
		return errorsx.Errorf(errorsx.ReasonInputDevice, "key %s is not available on Windows", key.Name)
	}
	logger := logging.WithComponent("hotkey")

	// The hook callback must return quickly, so it only queues.
	raw := make(chan Transition, 16)
	errCh := make(chan error, 1)
	threadCh := make(chan uint32, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		user32 := syscall.NewLazyDLL("user32.dll")
		kernel32 := syscall.NewLazyDLL("kernel32.dll")
		procSetWindowsHookExW := user32.NewProc("SetWindowsHookExW")
		procUnhookWindowsHookEx := user32.NewProc("UnhookWindowsHookEx")
		procCallNextHookEx := user32.NewProc("CallNextHookEx")
		procGetMessageW := user32.NewProc("GetMessageW")
		procGetCurrentThreadId := kernel32.NewProc("GetCurrentThreadId")

		callback := syscall.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
			if int32(nCode) >= 0 {
				k := (*kbdllHookStruct)(unsafe.Pointer(lParam))
				if k.vkCode == key.WinVK && (k.flags&llkhfInjected) == 0 {
					var t Transition = -1
					switch uint32(wParam) {
					case wmKeyDown, wmSysKeyDown:
						t = Down
					case wmKeyUp, wmSysKeyUp:
						t = Up
					}
					if t >= 0 {
						select {
						case raw <- t:
						default:
						}
					}
				}
			}
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		})

		hook, _, _ := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), callback, 0, 0)
		if hook == 0 {
			errCh <- errorsx.Errorf(errorsx.ReasonInputDevice, "SetWindowsHookExW failed")
			return
		}
		tid, _, _ := procGetCurrentThreadId.Call()
		threadCh <- uint32(tid)
		errCh <- nil

		var msg winMsg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
		}
		procUnhookWindowsHookEx.Call(hook)
		logger.Debug().Msg("low-level hook uninstalled")
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-time.After(2 * time.Second):
		return errorsx.Errorf(errorsx.ReasonInputDevice, "timeout installing low-level hook")
	}
	tid := <-threadCh
	logger.Info().Str("key", key.Name).Str("vk", fmt.Sprintf("0x%X", key.WinVK)).Msg("low-level hook installed")

	for {
		select {
		case <-ctx.Done():
			procPostThreadMessageW := syscall.NewLazyDLL("user32.dll").NewProc("PostThreadMessageW")
			procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
			return nil
		case t := <-raw:
			if !emit(ctx, out, key, t) {
				return nil
			}
		}
	}
}
