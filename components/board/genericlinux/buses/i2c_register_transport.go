package buses

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type i2cRegisterTransport struct {
	bus     I2C
	addr    byte
	options transportOptions
}

// NewI2CRegisterTransport returns a transport for the device at the 7-bit address addr. A read is
// the register address written and the data read back with a repeated start, in one transaction.
// Single registers use the handle's byte data calls.
func NewI2CRegisterTransport(bus I2C, addr byte, opts ...TransportOption) RegisterTransport {
	return &i2cRegisterTransport{bus: bus, addr: addr, options: newTransportOptions(opts)}
}

func (t *i2cRegisterTransport) withHandle(
	ctx context.Context,
	f func(ctx context.Context, handle I2CHandle) ([]byte, error),
) ([]byte, error) {
	return runTransaction(ctx, t.options.timeout, func(ctx context.Context) (data []byte, err error) {
		handle, err := t.bus.OpenHandle(t.addr)
		if err != nil {
			return nil, errors.Wrapf(err, "can't open I2C handle for address 0x%02x", t.addr)
		}
		defer func() {
			err = multierr.Combine(err, handle.Close())
		}()
		return f(ctx, handle)
	})
}

func (t *i2cRegisterTransport) ReadRegisters(ctx context.Context, register byte, buf []byte) error {
	if len(buf) > math.MaxUint8 {
		return errors.Errorf("can't read %d bytes in one I2C block read", len(buf))
	}
	data, err := t.withHandle(ctx, func(ctx context.Context, handle I2CHandle) ([]byte, error) {
		if len(buf) == 1 {
			reg := I2CRegister{Handle: handle, Register: register}
			value, err := reg.ReadByteData(ctx)
			if err != nil {
				return nil, err
			}
			return []byte{value}, nil
		}
		return handle.ReadBlockData(ctx, register, uint8(len(buf)))
	})
	if err != nil {
		return errors.Wrapf(err, "I2C read of register 0x%02x at address 0x%02x", register, t.addr)
	}
	if err := checkLength("I2C block read", len(data), len(buf)); err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

func (t *i2cRegisterTransport) WriteRegisters(ctx context.Context, register byte, data []byte) error {
	_, err := t.withHandle(ctx, func(ctx context.Context, handle I2CHandle) ([]byte, error) {
		if len(data) == 1 {
			reg := I2CRegister{Handle: handle, Register: register}
			return nil, reg.WriteByteData(ctx, data[0])
		}
		return nil, handle.WriteBlockData(ctx, register, data)
	})
	return errors.Wrapf(err, "I2C write of register 0x%02x at address 0x%02x", register, t.addr)
}
