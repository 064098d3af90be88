package genericlinux

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"

	"go.viam.com/motionsensors/components/board/genericlinux/buses"
)

// i2cBus is a periph.io I2C bus opened lazily by number or name, for example "1" or
// "/dev/i2c-1". The mutex is held from OpenHandle until the handle is closed.
type i2cBus struct {
	mu     sync.Mutex
	number string
	bus    i2c.BusCloser
}

func (bus *i2cBus) OpenHandle(addr byte) (buses.I2CHandle, error) {
	bus.mu.Lock()
	if bus.bus == nil {
		opened, err := i2creg.Open(bus.number)
		if err != nil {
			bus.mu.Unlock()
			return nil, errors.Wrapf(err, "can't open I2C bus %s", bus.number)
		}
		bus.bus = opened
	}
	return &i2cHandle{bus: bus, addr: uint16(addr)}, nil
}

func (bus *i2cBus) close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.bus == nil {
		return nil
	}
	err := bus.bus.Close()
	bus.bus = nil
	return err
}

type i2cHandle struct {
	bus      *i2cBus
	addr     uint16
	isClosed bool
}

func (h *i2cHandle) tx(w, r []byte) error {
	if h.isClosed {
		return errors.New("can't use an already closed I2CHandle")
	}
	return h.bus.bus.Tx(h.addr, w, r)
}

func (h *i2cHandle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	data, err := h.ReadBlockData(ctx, register, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (h *i2cHandle) WriteByteData(ctx context.Context, register, data byte) error {
	return h.tx([]byte{register, data}, nil)
}

// periph issues w and r as one transaction with a repeated start between them.
func (h *i2cHandle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	results := make([]byte, numBytes)
	if err := h.tx([]byte{register}, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (h *i2cHandle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	rawData := make([]byte, 0, len(data)+1)
	rawData = append(rawData, register)
	rawData = append(rawData, data...)
	return h.tx(rawData, nil)
}

func (h *i2cHandle) Close() error {
	if h.isClosed {
		return nil
	}
	h.isClosed = true
	h.bus.mu.Unlock()
	return nil
}
