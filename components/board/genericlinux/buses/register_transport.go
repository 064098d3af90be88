package buses

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// DefaultTimeout bounds every register transaction unless WithTimeout says otherwise.
const DefaultTimeout = time.Second

// RegisterTransport reads and writes runs of consecutive device registers. Implementations are
// synchronous: a call returns once the bus transaction has completed, failed, or exceeded the
// transport's timeout. Calls on one transport must not overlap; handles opened from a shared bus
// serialize transports that sit on the same physical bus.
type RegisterTransport interface {
	// ReadRegisters fills buf with len(buf) bytes starting at register.
	ReadRegisters(ctx context.Context, register byte, buf []byte) error
	// WriteRegisters writes data starting at register.
	WriteRegisters(ctx context.Context, register byte, data []byte) error
}

// ErrTransportTimeout is wrapped into the error of a transaction that ran past its timeout.
var ErrTransportTimeout = errors.New("register transaction timed out")

// TransportOption configures a register transport.
type TransportOption func(*transportOptions)

type transportOptions struct {
	timeout time.Duration
	baud    uint
	mode    uint
}

// DefaultSPIBaud is the clock rate used by SPI register transports, 4 MHz.
const DefaultSPIBaud = 4 * 1000 * 1000

func newTransportOptions(opts []TransportOption) transportOptions {
	options := transportOptions{
		timeout: DefaultTimeout,
		baud:    DefaultSPIBaud,
		mode:    0,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithTimeout sets the per-transaction timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(options *transportOptions) {
		if timeout > 0 {
			options.timeout = timeout
		}
	}
}

// WithBaud sets the SPI clock rate in Hz. I2C transports ignore it.
func WithBaud(baud uint) TransportOption {
	return func(options *transportOptions) {
		if baud > 0 {
			options.baud = baud
		}
	}
}

// WithMode sets the SPI mode (clock polarity and phase, 0-3). I2C transports ignore it.
func WithMode(mode uint) TransportOption {
	return func(options *transportOptions) {
		options.mode = mode
	}
}

type transactionResult struct {
	data []byte
	err  error
}

// runTransaction runs one blocking bus transaction on its own goroutine and gives up on it after
// timeout. Bytes are only handed back on success; a transaction that finishes late is dropped.
func runTransaction(
	ctx context.Context,
	timeout time.Duration,
	transaction func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan transactionResult, 1)
	goutils.PanicCapturingGo(func() {
		data, err := transaction(ctx)
		done <- transactionResult{data, err}
	})

	select {
	case result := <-done:
		return result.data, result.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.Wrapf(ErrTransportTimeout, "after %s: %s", timeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

func checkLength(what string, got, want int) error {
	if got != want {
		return errors.Errorf("%s returned %d bytes, expected %d", what, got, want)
	}
	return nil
}
