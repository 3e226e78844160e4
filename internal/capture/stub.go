//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package capture

import (
	"context"
	"fmt"
	"image"
	"runtime"
)

func portalScreenshot(context.Context, Options) (*image.RGBA, string, error) {
	return nil, "", fmt.Errorf("%w: no capture backend on %s", ErrUnavailable, runtime.GOOS)
}

func x11Screenshot() (*image.RGBA, error) {
	return nil, fmt.Errorf("%w: no capture backend on %s", ErrUnavailable, runtime.GOOS)
}

func listMonitors() ([]MonitorInfo, error) {
	return nil, fmt.Errorf("%w: no capture backend on %s", ErrUnavailable, runtime.GOOS)
}
