// Package genericlinux implements a board on top of the Linux I2C, SPI and GPIO character
// devices: I2C and SPI through periph.io, GPIO lines through mkch's gpio package.
package genericlinux

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/host/v3"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/components/board/genericlinux/buses"
	"go.viam.com/motionsensors/logging"
)

var _ = board.Board(&sysfsBoard{})

func init() {
	if _, err := host.Init(); err != nil {
		logging.Global().Debugw("error initializing host", "error", err)
	}
}

type sysfsBoard struct {
	mu     sync.Mutex
	i2cs   map[string]*i2cBus
	spis   map[string]*spiBus
	gpios  map[string]*gpioPin
	logger logging.Logger
}

// NewBoard returns a board with the buses and pins named in conf. Buses and lines are opened on
// first use.
func NewBoard(ctx context.Context, conf *Config, logger logging.Logger) (board.Board, error) {
	if err := conf.Validate("board"); err != nil {
		return nil, err
	}

	b := &sysfsBoard{
		i2cs:   make(map[string]*i2cBus, len(conf.I2Cs)),
		spis:   make(map[string]*spiBus, len(conf.SPIs)),
		gpios:  make(map[string]*gpioPin, len(conf.GPIOPins)),
		logger: logger,
	}
	for _, i2cConf := range conf.I2Cs {
		if _, ok := b.i2cs[i2cConf.Name]; ok {
			return nil, errors.Errorf("duplicate I2C bus name %q", i2cConf.Name)
		}
		b.i2cs[i2cConf.Name] = &i2cBus{number: i2cConf.Bus}
	}
	for _, spiConf := range conf.SPIs {
		if _, ok := b.spis[spiConf.Name]; ok {
			return nil, errors.Errorf("duplicate SPI bus name %q", spiConf.Name)
		}
		b.spis[spiConf.Name] = &spiBus{bus: spiConf.BusSelect}
	}
	for _, pinConf := range conf.GPIOPins {
		if _, ok := b.gpios[pinConf.Name]; ok {
			return nil, errors.Errorf("duplicate GPIO pin name %q", pinConf.Name)
		}
		b.gpios[pinConf.Name] = newGPIOPin(pinConf.Chip, pinConf.Line, logger)
	}
	logger.Debugw("board configured", "i2cs", len(b.i2cs), "spis", len(b.spis), "gpio_pins", len(b.gpios))
	return b, nil
}

func (b *sysfsBoard) I2CByName(name string) (buses.I2C, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bus, ok := b.i2cs[name]
	return bus, ok
}

func (b *sysfsBoard) SPIByName(name string) (buses.SPI, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bus, ok := b.spis[name]
	return bus, ok
}

func (b *sysfsBoard) GPIOPinByName(name string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pin, ok := b.gpios[name]
	if !ok {
		return nil, errors.Errorf("no GPIO pin named %q", name)
	}
	return pin, nil
}

func (b *sysfsBoard) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for _, bus := range b.i2cs {
		err = multierr.Combine(err, bus.close())
	}
	for _, bus := range b.spis {
		err = multierr.Combine(err, bus.Close(ctx))
	}
	for _, pin := range b.gpios {
		err = multierr.Combine(err, pin.Close())
	}
	return err
}
