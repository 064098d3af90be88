package inject

import (
	"context"

	"go.viam.com/motionsensors/components/board/genericlinux/buses"
)

// RegisterTransport is an injected RegisterTransport.
type RegisterTransport struct {
	buses.RegisterTransport
	ReadRegistersFunc  func(ctx context.Context, register byte, buf []byte) error
	WriteRegistersFunc func(ctx context.Context, register byte, data []byte) error
}

// ReadRegisters calls the injected ReadRegisters or the real version.
func (rt *RegisterTransport) ReadRegisters(ctx context.Context, register byte, buf []byte) error {
	if rt.ReadRegistersFunc == nil {
		return rt.RegisterTransport.ReadRegisters(ctx, register, buf)
	}
	return rt.ReadRegistersFunc(ctx, register, buf)
}

// WriteRegisters calls the injected WriteRegisters or the real version.
func (rt *RegisterTransport) WriteRegisters(ctx context.Context, register byte, data []byte) error {
	if rt.WriteRegistersFunc == nil {
		return rt.RegisterTransport.WriteRegisters(ctx, register, data)
	}
	return rt.WriteRegistersFunc(ctx, register, data)
}
