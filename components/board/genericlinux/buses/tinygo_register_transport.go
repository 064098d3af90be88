package buses

import (
	"context"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

type tinyGoI2CRegisterTransport struct {
	bus     drivers.I2C
	addr    uint16
	options transportOptions
}

// NewTinyGoI2CRegisterTransport returns a transport over a TinyGo I2C peripheral, such as a
// machine.I2C. The register address and the read are issued as one Tx.
func NewTinyGoI2CRegisterTransport(bus drivers.I2C, addr uint16, opts ...TransportOption) RegisterTransport {
	return &tinyGoI2CRegisterTransport{bus: bus, addr: addr, options: newTransportOptions(opts)}
}

func (t *tinyGoI2CRegisterTransport) ReadRegisters(ctx context.Context, register byte, buf []byte) error {
	data, err := runTransaction(ctx, t.options.timeout, func(context.Context) ([]byte, error) {
		r := make([]byte, len(buf))
		if err := t.bus.Tx(t.addr, []byte{register}, r); err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		return errors.Wrapf(err, "I2C read of register 0x%02x at address 0x%02x", register, t.addr)
	}
	copy(buf, data)
	return nil
}

func (t *tinyGoI2CRegisterTransport) WriteRegisters(ctx context.Context, register byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, register)
	w = append(w, data...)
	_, err := runTransaction(ctx, t.options.timeout, func(context.Context) ([]byte, error) {
		return nil, t.bus.Tx(t.addr, w, nil)
	})
	return errors.Wrapf(err, "I2C write of register 0x%02x at address 0x%02x", register, t.addr)
}
