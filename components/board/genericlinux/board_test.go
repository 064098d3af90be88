package genericlinux

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/logging"
)

func TestNewBoard(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	conf := &Config{
		I2Cs:     []board.I2CConfig{{Name: "main", Bus: "1"}},
		SPIs:     []board.SPIConfig{{Name: "spi0", BusSelect: "0"}},
		GPIOPins: []board.GPIOConfig{{Name: "int1", Chip: "/dev/gpiochip0", Line: 22}},
	}
	b, err := NewBoard(ctx, conf, logger)
	test.That(t, err, test.ShouldBeNil)

	i2c, ok := b.I2CByName("main")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, i2c, test.ShouldNotBeNil)
	_, ok = b.I2CByName("other")
	test.That(t, ok, test.ShouldBeFalse)

	spi, ok := b.SPIByName("spi0")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spi, test.ShouldNotBeNil)
	_, ok = b.SPIByName("spi1")
	test.That(t, ok, test.ShouldBeFalse)

	pin, err := b.GPIOPinByName("int1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pin, test.ShouldNotBeNil)
	_, err = b.GPIOPinByName("int2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "int2")

	// Nothing was opened, so there is nothing to fail on close.
	test.That(t, b.Close(ctx), test.ShouldBeNil)
}

func TestNewBoardRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	t.Run("duplicate I2C name", func(t *testing.T) {
		_, err := NewBoard(ctx, &Config{
			I2Cs: []board.I2CConfig{{Name: "main", Bus: "1"}, {Name: "main", Bus: "2"}},
		}, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate I2C")
	})

	t.Run("duplicate SPI name", func(t *testing.T) {
		_, err := NewBoard(ctx, &Config{
			SPIs: []board.SPIConfig{{Name: "s", BusSelect: "0"}, {Name: "s", BusSelect: "1"}},
		}, logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("duplicate GPIO name", func(t *testing.T) {
		_, err := NewBoard(ctx, &Config{
			GPIOPins: []board.GPIOConfig{
				{Name: "p", Chip: "/dev/gpiochip0", Line: 1},
				{Name: "p", Chip: "/dev/gpiochip0", Line: 2},
			},
		}, logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := NewBoard(ctx, &Config{SPIs: []board.SPIConfig{{Name: "s"}}}, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "bus_select")

		_, err = NewBoard(ctx, &Config{I2Cs: []board.I2CConfig{{Bus: "1"}}}, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "board.i2cs.0")

		_, err = NewBoard(ctx, &Config{GPIOPins: []board.GPIOConfig{{Name: "p"}}}, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "chip")
	})
}

func TestHandleLocksBus(t *testing.T) {
	bus := &spiBus{bus: "0"}
	handle, err := bus.OpenHandle()
	test.That(t, err, test.ShouldBeNil)

	opened := make(chan struct{})
	go func() {
		second, err := bus.OpenHandle()
		if err == nil {
			second.Close()
		}
		close(opened)
	}()

	select {
	case <-opened:
		t.Fatal("second handle opened while the first was held")
	default:
	}
	test.That(t, handle.Close(), test.ShouldBeNil)
	// Closing twice does not unlock twice.
	test.That(t, handle.Close(), test.ShouldBeNil)
	<-opened

	_, err = handle.Xfer(context.Background(), 1000, "0", 0, []byte{0})
	test.That(t, err, test.ShouldNotBeNil)
}
