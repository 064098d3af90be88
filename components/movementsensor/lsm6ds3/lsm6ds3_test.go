package lsm6ds3

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/components/board/genericlinux/buses"
	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/logging"
	"go.viam.com/motionsensors/testutils/inject"
)

type write struct {
	register Register
	value    byte
}

// fakeChip answers register reads from a map and FIFO reads from a queue of element sets. INT1 is
// high while the queue is not empty.
type fakeChip struct {
	mu        sync.Mutex
	clk       *clock.Mock
	registers map[byte]byte
	fifo      [][]byte

	reads      []Register
	writes     []write
	writeTimes []time.Time
	failedOps  int

	failWrite func(register Register, value byte) error
	failRead  func(register Register, n int) error
}

func newFakeChip() *fakeChip {
	return &fakeChip{
		clk:       clock.NewMock(),
		registers: map[byte]byte{byte(WhoAmI): ExpectedWhoAmI},
	}
}

func (c *fakeChip) pushSet(words [ElementSetWords]int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := make([]byte, 0, elementSetBytes)
	for _, w := range words {
		set = append(set, byte(uint16(w)), byte(uint16(w)>>8))
	}
	c.fifo = append(c.fifo, set)
}

func (c *fakeChip) transport() *inject.RegisterTransport {
	transport := &inject.RegisterTransport{}
	transport.ReadRegistersFunc = func(ctx context.Context, register byte, buf []byte) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.failRead != nil {
			if err := c.failRead(Register(register), len(c.reads)); err != nil {
				c.failedOps++
				return err
			}
		}
		c.reads = append(c.reads, Register(register))
		if Register(register) == FIFODataOutL {
			copy(buf, c.fifo[0])
			c.fifo = c.fifo[1:]
			return nil
		}
		for i := range buf {
			buf[i] = c.registers[register+byte(i)]
		}
		return nil
	}
	transport.WriteRegistersFunc = func(ctx context.Context, register byte, data []byte) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.failWrite != nil {
			if err := c.failWrite(Register(register), data[0]); err != nil {
				c.failedOps++
				return err
			}
		}
		c.writes = append(c.writes, write{Register(register), data[0]})
		c.writeTimes = append(c.writeTimes, c.clk.Now())
		c.registers[register] = data[0]
		return nil
	}
	return transport
}

func (c *fakeChip) int1() *inject.GPIOPin {
	pin := &inject.GPIOPin{}
	pin.GetFunc = func(ctx context.Context, extra map[string]interface{}) (bool, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.fifo) > 0, nil
	}
	return pin
}

func (c *fakeChip) sensor(t *testing.T) *LSM6DS3 {
	imu := NewFromTransport(c.transport(), c.int1(), logging.NewTestLogger(t))
	imu.clock = c.clk
	return imu
}

func (c *fakeChip) resetCounts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = nil
	c.writes = nil
	c.writeTimes = nil
	c.failedOps = 0
}

// runInit runs Init while advancing the mock clock until Init returns.
func runInit(ctx context.Context, c *fakeChip, imu *LSM6DS3) error {
	done := make(chan error, 1)
	go func() {
		done <- imu.Init(ctx)
	}()
	for {
		select {
		case err := <-done:
			return err
		default:
			c.clk.Add(10 * time.Millisecond)
		}
	}
}

func newInitializedSensor(t *testing.T) (*fakeChip, *LSM6DS3) {
	t.Helper()
	chip := newFakeChip()
	imu := chip.sensor(t)
	test.That(t, runInit(context.Background(), chip, imu), test.ShouldBeNil)
	chip.resetCounts()
	return chip, imu
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	chip := newFakeChip()
	imu := chip.sensor(t)
	ok, err := imu.Check(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, chip.reads, test.ShouldResemble, []Register{WhoAmI})

	for _, id := range []byte{0x00, 0x68, 0x6A, 0xE5, 0xFF} {
		chip.registers[byte(WhoAmI)] = id
		ok, err := imu.Check(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeFalse)
	}

	chip.failRead = func(Register, int) error { return errors.New("timeout") }
	ok, err = imu.Check(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestInit(t *testing.T) {
	chip := newFakeChip()
	imu := chip.sensor(t)

	test.That(t, runInit(context.Background(), chip, imu), test.ShouldBeNil)

	test.That(t, chip.reads, test.ShouldResemble, []Register{WhoAmI})
	test.That(t, chip.writes, test.ShouldResemble, []write{
		{Ctrl3C, 0x01},
		{Ctrl1XL, 0x8C},
		{Ctrl2G, 0x88},
		{Ctrl3C, 0x44},
		{Ctrl4C, 0x10},
		{Ctrl9XL, 0x38},
		{Ctrl10C, 0x38},
		{Int1Ctrl, 0x08},
		{FIFOCtrl1, 0x01},
		{FIFOCtrl2, 0x00},
		{FIFOCtrl3, 0x09},
		{FIFOCtrl4, 0x08},
		{FIFOCtrl5, 0x00},
		{FIFOCtrl5, 0x46},
	})
	// Nothing is written while the chip settles after the reset.
	settled := chip.writeTimes[1].Sub(chip.writeTimes[0])
	test.That(t, settled, test.ShouldBeGreaterThanOrEqualTo, ResetSettleTime)

	test.That(t, imu.Temperature(), test.ShouldEqual, 25.0)
	test.That(t, imu.Orientation(), test.ShouldResemble, r3.Vector{})

	err := imu.Init(context.Background())
	test.That(t, errors.Is(err, ErrInitAttempted), test.ShouldBeTrue)
}

func TestInitAbortsOnFailedWrite(t *testing.T) {
	chip := newFakeChip()
	chip.failWrite = func(register Register, value byte) error {
		if register == Ctrl1XL {
			return errors.New("nack")
		}
		return nil
	}
	imu := chip.sensor(t)

	err := runInit(context.Background(), chip, imu)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "accelerometer rate and range")
	test.That(t, err.Error(), test.ShouldContainSubstring, "nack")

	// The identity read and the reset succeed; the accelerometer write is the last one attempted.
	test.That(t, len(chip.reads)+len(chip.writes), test.ShouldEqual, 2)
	test.That(t, chip.failedOps, test.ShouldEqual, 1)
	test.That(t, chip.writes, test.ShouldResemble, []write{{Ctrl3C, 0x01}})
	for _, w := range chip.writes {
		test.That(t, w.register, test.ShouldNotEqual, Ctrl2G)
		test.That(t, w.register, test.ShouldNotEqual, FIFOCtrl1)
		test.That(t, w.register, test.ShouldNotEqual, FIFOCtrl5)
	}

	err = imu.Update(context.Background())
	test.That(t, errors.Is(err, movementsensor.ErrNotInitialized), test.ShouldBeTrue)

	err = imu.Init(context.Background())
	test.That(t, errors.Is(err, ErrInitAttempted), test.ShouldBeTrue)
	test.That(t, len(chip.writes), test.ShouldEqual, 1)
}

func TestInitIdentityMismatch(t *testing.T) {
	chip := newFakeChip()
	chip.registers[byte(WhoAmI)] = 0x6A
	imu := chip.sensor(t)

	err := imu.Init(context.Background())
	test.That(t, errors.Is(err, movementsensor.ErrIdentityMismatch), test.ShouldBeTrue)
	test.That(t, chip.writes, test.ShouldBeEmpty)
}

func TestInitCanceledDuringReset(t *testing.T) {
	chip := newFakeChip()
	imu := chip.sensor(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- imu.Init(ctx)
	}()
	// The mock clock never advances, so Init waits for the reset until canceled.
	for {
		chip.mu.Lock()
		n := len(chip.writes)
		chip.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	err := <-done
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	test.That(t, chip.writes, test.ShouldResemble, []write{{Ctrl3C, 0x01}})
}

func TestInitNeedsInt1(t *testing.T) {
	chip := newFakeChip()
	imu := NewFromTransport(chip.transport(), nil, logging.NewTestLogger(t))
	test.That(t, imu.Init(context.Background()), test.ShouldNotBeNil)
	test.That(t, chip.reads, test.ShouldBeEmpty)
}

func TestUpdateIntegratesGyro(t *testing.T) {
	chip, imu := newInitializedSensor(t)
	for i := 0; i < 3; i++ {
		chip.pushSet([ElementSetWords]int16{100, -200, 50, 1, 2, 3, 0, 160, 0})
	}

	test.That(t, imu.Update(context.Background()), test.ShouldBeNil)

	test.That(t, chip.reads, test.ShouldResemble, []Register{FIFODataOutL, FIFODataOutL, FIFODataOutL})
	test.That(t, chip.writes, test.ShouldBeEmpty)

	step := (1000.0 / 32768) * (1.0 / 1660)
	test.That(t, imu.Pitch(), test.ShouldAlmostEqual, 3*100*step)
	test.That(t, imu.Pitch(), test.ShouldAlmostEqual, 0.005515, 0.000001)
	test.That(t, imu.Roll(), test.ShouldAlmostEqual, 3*-200*step)
	test.That(t, imu.Yaw(), test.ShouldAlmostEqual, 3*50*step)
	test.That(t, imu.Temperature(), test.ShouldEqual, 35.0)
	test.That(t, imu.Samples(), test.ShouldEqual, uint64(3))

	orientation := imu.Orientation()
	test.That(t, orientation.X, test.ShouldEqual, imu.Pitch())
	test.That(t, orientation.Y, test.ShouldEqual, imu.Roll())
	test.That(t, orientation.Z, test.ShouldEqual, imu.Yaw())
}

func TestUpdateEmptyFIFO(t *testing.T) {
	chip, imu := newInitializedSensor(t)

	test.That(t, imu.Update(context.Background()), test.ShouldBeNil)
	test.That(t, chip.reads, test.ShouldBeEmpty)
	test.That(t, imu.Pitch(), test.ShouldEqual, 0.0)
	test.That(t, imu.Roll(), test.ShouldEqual, 0.0)
	test.That(t, imu.Yaw(), test.ShouldEqual, 0.0)
	test.That(t, imu.Temperature(), test.ShouldEqual, 25.0)
	test.That(t, imu.Samples(), test.ShouldEqual, uint64(0))
}

func TestUpdateReadFailureKeepsAppliedSets(t *testing.T) {
	chip, imu := newInitializedSensor(t)
	for i := 0; i < 3; i++ {
		chip.pushSet([ElementSetWords]int16{100})
	}
	chip.failRead = func(register Register, n int) error {
		if n == 1 {
			return errors.New("bus error")
		}
		return nil
	}

	err := imu.Update(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bus error")
	test.That(t, imu.Samples(), test.ShouldEqual, uint64(1))
	test.That(t, imu.Pitch(), test.ShouldAlmostEqual, 100*degreesPerCount)

	// The caller polls again and the rest of the FIFO is drained.
	chip.failRead = nil
	test.That(t, imu.Update(context.Background()), test.ShouldBeNil)
	test.That(t, imu.Samples(), test.ShouldEqual, uint64(3))
}

func TestUpdateInt1Failure(t *testing.T) {
	chip := newFakeChip()
	pin := &inject.GPIOPin{}
	pin.GetFunc = func(ctx context.Context, extra map[string]interface{}) (bool, error) {
		return false, errors.New("line closed")
	}
	imu := NewFromTransport(chip.transport(), pin, logging.NewTestLogger(t))
	imu.clock = chip.clk
	test.That(t, runInit(context.Background(), chip, imu), test.ShouldBeNil)

	err := imu.Update(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "line closed")
}

func TestUpdateBeforeInit(t *testing.T) {
	chip := newFakeChip()
	chip.pushSet([ElementSetWords]int16{100})
	imu := chip.sensor(t)

	err := imu.Update(context.Background())
	test.That(t, errors.Is(err, movementsensor.ErrNotInitialized), test.ShouldBeTrue)
	test.That(t, chip.reads, test.ShouldBeEmpty)
}

func TestConcurrentReaders(t *testing.T) {
	chip, imu := newInitializedSensor(t)
	for i := 0; i < 100; i++ {
		chip.pushSet([ElementSetWords]int16{1, 1, 1})
	}

	var wg sync.WaitGroup
	torn := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if o := imu.Orientation(); o.X != o.Y || o.Y != o.Z {
				torn++
			}
		}
	}()
	test.That(t, imu.Update(context.Background()), test.ShouldBeNil)
	wg.Wait()
	test.That(t, torn, test.ShouldEqual, 0)
	test.That(t, imu.Samples(), test.ShouldEqual, uint64(100))
}

func TestResetFIFO(t *testing.T) {
	chip, imu := newInitializedSensor(t)
	test.That(t, imu.ResetFIFO(context.Background()), test.ShouldBeNil)
	test.That(t, chip.writes, test.ShouldResemble, []write{{FIFOCtrl5, 0x00}, {FIFOCtrl5, 0x46}})
}

func TestConfigAccess(t *testing.T) {
	chip := newFakeChip()
	imu := chip.sensor(t)

	test.That(t, imu.EnableConfigAccess(context.Background()), test.ShouldBeNil)
	test.That(t, chip.registers[byte(FuncCfgAccess)], test.ShouldEqual, byte(0x80))
	test.That(t, imu.DisableConfigAccess(context.Background()), test.ShouldBeNil)
	test.That(t, chip.registers[byte(FuncCfgAccess)], test.ShouldEqual, byte(0x00))

	// Round trip through the register file.
	value, err := imu.readRegister(context.Background(), FuncCfgAccess)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, value, test.ShouldEqual, byte(0x00))
}

func TestFIFOStatus(t *testing.T) {
	chip := newFakeChip()
	imu := chip.sensor(t)

	chip.registers[byte(FIFOStatus1)] = 0x12
	chip.registers[byte(FIFOStatus2)] = 0x50
	chip.registers[byte(FIFOStatus3)] = 0x03
	chip.registers[byte(FIFOStatus4)] = 0xFC

	status, err := imu.FIFOStatus(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status, test.ShouldResemble, FIFOStatus{
		UnreadWords: 0x12,
		Empty:       true,
		Full:        false,
		Overrun:     true,
		Watermark:   false,
		Pattern:     0x03,
	})
	test.That(t, status.UnreadSets(), test.ShouldEqual, 2)
	test.That(t, chip.reads, test.ShouldResemble, []Register{FIFOStatus1})
}

func TestReadingsAndClose(t *testing.T) {
	chip, imu := newInitializedSensor(t)
	chip.pushSet([ElementSetWords]int16{0, 0, 0, 0, 0, 0, 0, -16, 0})
	test.That(t, imu.Poll(context.Background()), test.ShouldBeNil)

	readings, err := imu.Readings(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, readings["temperature_celsius"], test.ShouldEqual, 24.0)
	test.That(t, readings["samples"], test.ShouldEqual, uint64(1))
	test.That(t, readings["pitch"], test.ShouldEqual, 0.0)

	test.That(t, imu.Close(context.Background()), test.ShouldBeNil)
	test.That(t, chip.writes, test.ShouldResemble, []write{{Ctrl1XL, 0x00}, {Ctrl2G, 0x00}})

	_, err = imu.Readings(context.Background(), nil)
	test.That(t, errors.Is(err, movementsensor.ErrNotInitialized), test.ShouldBeTrue)
}

func TestSPIBinding(t *testing.T) {
	type transfer struct {
		baud       uint
		chipSelect string
		mode       uint
		tx         []byte
	}
	var transfers []transfer

	handle := &inject.SPIHandle{}
	handle.CloseFunc = func() error { return nil }
	handle.XferFunc = func(ctx context.Context, baud uint, chipSelect string, mode uint, tx []byte) ([]byte, error) {
		transfers = append(transfers, transfer{baud, chipSelect, mode, append([]byte{}, tx...)})
		rx := make([]byte, len(tx))
		if tx[0] == buses.SPIModeRead|byte(WhoAmI) {
			rx[1] = ExpectedWhoAmI
		}
		return rx, nil
	}
	bus := &inject.SPI{}
	bus.OpenHandleFunc = func() (buses.SPIHandle, error) { return handle, nil }

	imu := NewSPI(bus, "cs0", &inject.GPIOPin{}, logging.NewTestLogger(t))
	ok, err := imu.Check(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, imu.EnableConfigAccess(context.Background()), test.ShouldBeNil)

	test.That(t, transfers, test.ShouldResemble, []transfer{
		{4000000, "cs0", 0, []byte{0x8F, 0x00}},
		{4000000, "cs0", 0, []byte{0x01, 0x80}},
	})
}

func TestNewFromBoard(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	bus := &inject.SPI{}

	b := &inject.Board{}
	b.SPIByNameFunc = func(name string) (buses.SPI, bool) {
		return bus, name == "spi0"
	}
	b.GPIOPinByNameFunc = func(name string) (board.GPIOPin, error) {
		return nil, errors.Errorf("no pin %s", name)
	}

	_, err := newFromBoard(ctx, b, &Config{SPIBus: "spi1", ChipSelect: "0", Int1Pin: "22"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "spi1")

	_, err = newFromBoard(ctx, b, &Config{SPIBus: "spi0", ChipSelect: "0", Int1Pin: "22"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no pin 22")

	bus.OpenHandleFunc = func() (buses.SPIHandle, error) {
		return nil, errors.New("no spidev")
	}
	b.GPIOPinByNameFunc = func(name string) (board.GPIOPin, error) {
		return &inject.GPIOPin{}, nil
	}
	_, err = newFromBoard(ctx, b, &Config{SPIBus: "spi0", ChipSelect: "0", Int1Pin: "22"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "identity check")
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{SPIBus: "spi0", ChipSelect: "0"}
	err := cfg.Validate("components.0.attributes")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "int1_pin")

	cfg.Int1Pin = "22"
	test.That(t, cfg.Validate("components.0.attributes"), test.ShouldBeNil)

	cfg.Timeout = -time.Second
	test.That(t, cfg.Validate("components.0.attributes"), test.ShouldNotBeNil)
}
