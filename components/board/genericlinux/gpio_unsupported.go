//go:build !linux

package genericlinux

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/motionsensors/logging"
)

type gpioPin struct {
	devicePath string
	offset     uint32
}

func newGPIOPin(devicePath string, offset uint32, logger logging.Logger) *gpioPin {
	return &gpioPin{devicePath: devicePath, offset: offset}
}

func (pin *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	return false, errors.Errorf("GPIO line %d of %s: GPIO character devices are only supported on Linux",
		pin.offset, pin.devicePath)
}

func (pin *gpioPin) Close() error {
	return nil
}
