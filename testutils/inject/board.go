package inject

import (
	"context"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/components/board/genericlinux/buses"
)

// Board is an injected board.
type Board struct {
	board.Board
	I2CByNameFunc     func(name string) (buses.I2C, bool)
	SPIByNameFunc     func(name string) (buses.SPI, bool)
	GPIOPinByNameFunc func(name string) (board.GPIOPin, error)
	CloseFunc         func(ctx context.Context) error
}

// I2CByName calls the injected I2CByName or the real version.
func (b *Board) I2CByName(name string) (buses.I2C, bool) {
	if b.I2CByNameFunc == nil {
		return b.Board.I2CByName(name)
	}
	return b.I2CByNameFunc(name)
}

// SPIByName calls the injected SPIByName or the real version.
func (b *Board) SPIByName(name string) (buses.SPI, bool) {
	if b.SPIByNameFunc == nil {
		return b.Board.SPIByName(name)
	}
	return b.SPIByNameFunc(name)
}

// GPIOPinByName calls the injected GPIOPinByName or the real version.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	if b.GPIOPinByNameFunc == nil {
		return b.Board.GPIOPinByName(name)
	}
	return b.GPIOPinByNameFunc(name)
}

// Close calls the injected Close or the real version.
func (b *Board) Close(ctx context.Context) error {
	if b.CloseFunc == nil {
		if b.Board == nil {
			return nil
		}
		return b.Board.Close(ctx)
	}
	return b.CloseFunc(ctx)
}
