//go:build !linux && !darwin && !windows

package platform

import (
	"runtime"

	"speechcli/internal/errorsx"
)

func New() (Handler, error) {
	return nil, errorsx.Errorf(errorsx.ReasonInputDevice, "unsupported platform: %s", runtime.GOOS)
}
