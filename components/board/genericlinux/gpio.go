//go:build linux

package genericlinux

import (
	"context"
	"sync"

	"github.com/mkch/gpio"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/motionsensors/logging"
)

// gpioPin is an input line of a GPIO character device, requested on first read.
type gpioPin struct {
	devicePath string
	offset     uint32

	mu     sync.Mutex
	line   *gpio.Line
	logger logging.Logger
}

func newGPIOPin(devicePath string, offset uint32, logger logging.Logger) *gpioPin {
	return &gpioPin{devicePath: devicePath, offset: offset, logger: logger}
}

// Call with the mutex held.
func (pin *gpioPin) openGpioFd() error {
	if pin.line != nil {
		return nil
	}

	chip, err := gpio.OpenChip(pin.devicePath)
	if err != nil {
		return errors.Wrapf(err, "can't open GPIO chip %s", pin.devicePath)
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	line, err := chip.OpenLine(pin.offset, 0, gpio.Input, "motionsensors")
	if err != nil {
		return errors.Wrapf(err, "can't request line %d of %s", pin.offset, pin.devicePath)
	}
	pin.line = line
	pin.logger.Debugw("requested GPIO input line", "chip", pin.devicePath, "line", pin.offset)
	return nil
}

func (pin *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openGpioFd(); err != nil {
		pin.logger.Warnw("GPIO line unavailable", "chip", pin.devicePath, "line", pin.offset, "error", err)
		return false, err
	}

	value, err := pin.line.Value()
	if err != nil {
		return false, err
	}
	// Any non-zero value is high.
	return value != 0, nil
}

func (pin *gpioPin) Close() error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line == nil {
		return nil
	}
	err := pin.line.Close()
	pin.line = nil
	return err
}
