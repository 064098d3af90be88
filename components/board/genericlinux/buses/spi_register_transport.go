package buses

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Address byte flags for devices that fold the transfer direction into the register address.
const (
	SPIModeWrite byte = 0x00
	SPIModeRead  byte = 0x80
)

type spiRegisterTransport struct {
	bus        SPI
	chipSelect string
	options    transportOptions
}

// NewSPIRegisterTransport returns a transport for the device behind chipSelect. Every call is one
// chip-select transaction whose first byte is the register address with the read flag set or
// cleared. Defaults are a 4 MHz clock in mode 0.
func NewSPIRegisterTransport(bus SPI, chipSelect string, opts ...TransportOption) RegisterTransport {
	return &spiRegisterTransport{bus: bus, chipSelect: chipSelect, options: newTransportOptions(opts)}
}

func (t *spiRegisterTransport) xfer(ctx context.Context, tx []byte) ([]byte, error) {
	return runTransaction(ctx, t.options.timeout, func(ctx context.Context) (rx []byte, err error) {
		handle, err := t.bus.OpenHandle()
		if err != nil {
			return nil, errors.Wrap(err, "can't open SPI handle")
		}
		defer func() {
			err = multierr.Combine(err, handle.Close())
		}()
		return handle.Xfer(ctx, t.options.baud, t.chipSelect, t.options.mode, tx)
	})
}

func (t *spiRegisterTransport) ReadRegisters(ctx context.Context, register byte, buf []byte) error {
	tx := make([]byte, len(buf)+1)
	tx[0] = SPIModeRead | register
	rx, err := t.xfer(ctx, tx)
	if err != nil {
		return errors.Wrapf(err, "SPI read of register 0x%02x on chip select %s", register, t.chipSelect)
	}
	if err := checkLength("SPI transfer", len(rx), len(tx)); err != nil {
		return err
	}
	// The byte clocked in while the address went out carries no data.
	copy(buf, rx[1:])
	return nil
}

func (t *spiRegisterTransport) WriteRegisters(ctx context.Context, register byte, data []byte) error {
	tx := make([]byte, 0, len(data)+1)
	tx = append(tx, SPIModeWrite|(register&^SPIModeRead))
	tx = append(tx, data...)
	_, err := t.xfer(ctx, tx)
	return errors.Wrapf(err, "SPI write of register 0x%02x on chip select %s", register, t.chipSelect)
}
