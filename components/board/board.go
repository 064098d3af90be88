// Package board defines the buses and pins a board exposes to sensor drivers.
package board

import (
	"context"

	"go.viam.com/motionsensors/components/board/genericlinux/buses"
)

// Board is a local board with named buses and pins.
type Board interface {
	// I2CByName returns an I2C bus by name.
	I2CByName(name string) (buses.I2C, bool)

	// SPIByName returns an SPI bus by name.
	SPIByName(name string) (buses.SPI, bool)

	// GPIOPinByName returns a GPIO pin by name.
	GPIOPinByName(name string) (GPIOPin, error)

	// Close releases every bus and pin the board opened.
	Close(ctx context.Context) error
}
