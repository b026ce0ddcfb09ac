//go:build linux

package hotkey

import (
	"context"
	"fmt"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
	"speechcli/internal/logging"
)

// EvdevListener reads key events straight from /dev/input/event*.
// The user needs read access to those nodes (usually the "input" group).
type EvdevListener struct{}

// Listen opens every input device that can emit key and forwards its
// transitions until ctx is done.
func (EvdevListener) Listen(ctx context.Context, key keys.Key, out chan<- Event) error {
	logger := logging.WithComponent("hotkey")
	if key.Evdev == 0 {
		return errorsx.Errorf(errorsx.ReasonInputDevice, "key %s has no evdev code", key.Name)
	}
	code := evdev.EvCode(key.Evdev)

	devices, err := openKeyDevices(code)
	if err != nil {
		return err
	}
	for _, d := range devices {
		name, _ := d.Name()
		logger.Info().Str("path", d.Path()).Str("device", name).Msg("listening")
	}

	var wg sync.WaitGroup
	for _, d := range devices {
		wg.Add(1)
		go func(d *evdev.InputDevice) {
			defer wg.Done()
			for {
				ev, err := d.ReadOne()
				if err != nil {
					if ctx.Err() == nil {
						logger.Error().Err(err).Str("path", d.Path()).Msg("device read error")
					}
					return
				}
				if ev.Type != evdev.EV_KEY || ev.Code != code {
					continue
				}
				var ok bool
				switch ev.Value {
				case 1:
					ok = emit(ctx, out, key, Down)
				case 0:
					ok = emit(ctx, out, key, Up)
				default:
					// 2 is auto-repeat
					continue
				}
				if !ok {
					return
				}
			}
		}(d)
	}

	<-ctx.Done()
	for _, d := range devices {
		_ = d.Close()
	}
	wg.Wait()
	return nil
}

func openKeyDevices(code evdev.EvCode) ([]*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("list input devices: %w", err), errorsx.ReasonInputDevice)
	}
	logger := logging.WithComponent("hotkey")

	var devices []*evdev.InputDevice
	for _, p := range paths {
		d, err := evdev.Open(p.Path)
		if err != nil {
			logger.Warn().Err(err).Str("path", p.Path).Msg("skipping input device")
			continue
		}
		if hasCode(d.CapableEvents(evdev.EV_KEY), code) {
			devices = append(devices, d)
			continue
		}
		_ = d.Close()
	}
	if len(devices) == 0 {
		return nil, errorsx.Errorf(errorsx.ReasonInputDevice,
			"no input devices found; ensure you have permission to read /dev/input/event*")
	}
	return devices, nil
}

func hasCode(codes []evdev.EvCode, code evdev.EvCode) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
