// Package lsm6ds3 implements a driver for the LSM6DS3 6-axis inertial unit over SPI. A datasheet
// for this chip is at https://www.st.com/resource/en/datasheet/lsm6ds3.pdf
//
// The chip is configured to stream gyroscope, accelerometer and temperature samples at 1660 Hz
// into its FIFO and to hold INT1 high while the FIFO is not empty. Update drains the FIFO and
// integrates the angular rate into pitch, roll and yaw in degrees. The integration is a plain sum
// of rate times sample period: there is no drift compensation and no correction from the
// accelerometer, whose samples are read out of the FIFO and dropped.
package lsm6ds3

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/components/board/genericlinux/buses"
	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/logging"
	"go.viam.com/motionsensors/registry"
	"go.viam.com/motionsensors/utils"
)

// Model is the registry name of this driver.
const Model = "lsm6ds3"

// Sensitivities and rates of the configuration written by Init.
const (
	// GyroLSB is degrees per second per count at 1000 dps full scale.
	GyroLSB = 1000.0 / 32768
	// AccelLSB is g per count at 8 g full scale.
	AccelLSB = 8.0 / 32768
	// TempLSB is degrees Celsius per count.
	TempLSB = 1.0 / 16
	// TempOffset is the temperature of a zero count.
	TempOffset = 25.0
	// OutputDataRate is the sample rate in Hz.
	OutputDataRate = 1660.0
)

// ResetSettleTime is how long the chip needs after a software reset before it accepts writes.
const ResetSettleTime = 100 * time.Millisecond

// SPI settings of the chip: mode 0 with the read flag in the address byte.
const (
	spiBaud = 4 * 1000 * 1000
	spiMode = 0
)

var (
	// ErrInitAttempted is returned by Init on a sensor whose Init already ran. A sensor whose Init
	// failed is in an unknown partial configuration and must be discarded.
	ErrInitAttempted = errors.New("LSM6DS3 initialization was already attempted")
	errNoInt1Pin     = errors.New("LSM6DS3 needs an INT1 pin")
)

// Config is used to configure the attributes of the chip.
type Config struct {
	SPIBus     string        `json:"spi_bus"`
	ChipSelect string        `json:"chip_select"`
	Int1Pin    string        `json:"int1_pin"`
	BaudHz     uint          `json:"baud_hz,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.SPIBus == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "spi_bus")
	}
	if cfg.ChipSelect == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "chip_select")
	}
	if cfg.Int1Pin == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "int1_pin")
	}
	if cfg.Timeout < 0 {
		return utils.NewConfigValidationError(path, errors.New("timeout must not be negative"))
	}
	return nil
}

func init() {
	registry.RegisterComponent(Model, registry.Registration[*Config]{
		Constructor: func(
			ctx context.Context,
			b board.Board,
			name string,
			cfg *Config,
			logger logging.Logger,
		) (movementsensor.Sensor, error) {
			return newFromBoard(ctx, b, cfg, logger)
		},
	})
}

// LSM6DS3 is an inertial unit whose FIFO is drained by Update.
type LSM6DS3 struct {
	transport buses.RegisterTransport
	int1      board.GPIOPin
	clock     clock.Clock
	logger    logging.Logger

	// mu guards everything below. Update holds it for the whole drain.
	mu            sync.Mutex
	initAttempted bool
	initialized   bool
	pitch         float64
	roll          float64
	yaw           float64
	temperature   float64
	samples       uint64
}

// NewSPI returns a driver for the chip behind chipSelect on bus, whose INT1 output is wired to
// int1. The transport runs at 4 MHz in mode 0 unless opts say otherwise. No I/O happens until Init.
func NewSPI(
	bus buses.SPI,
	chipSelect string,
	int1 board.GPIOPin,
	logger logging.Logger,
	opts ...buses.TransportOption,
) *LSM6DS3 {
	opts = append([]buses.TransportOption{buses.WithBaud(spiBaud), buses.WithMode(spiMode)}, opts...)
	return NewFromTransport(buses.NewSPIRegisterTransport(bus, chipSelect, opts...), int1, logger)
}

// NewFromTransport returns a driver using an already attached transport.
func NewFromTransport(transport buses.RegisterTransport, int1 board.GPIOPin, logger logging.Logger) *LSM6DS3 {
	return &LSM6DS3{
		transport:   transport,
		int1:        int1,
		clock:       clock.New(),
		logger:      logger,
		temperature: TempOffset,
	}
}

func newFromBoard(ctx context.Context, b board.Board, cfg *Config, logger logging.Logger) (*LSM6DS3, error) {
	bus, ok := b.SPIByName(cfg.SPIBus)
	if !ok {
		return nil, errors.Errorf("can't find SPI bus '%s' for LSM6DS3 sensor", cfg.SPIBus)
	}
	int1, err := b.GPIOPinByName(cfg.Int1Pin)
	if err != nil {
		return nil, errors.Wrapf(err, "can't find INT1 pin '%s' for LSM6DS3 sensor", cfg.Int1Pin)
	}
	opts := []buses.TransportOption{buses.WithTimeout(cfg.Timeout)}
	if cfg.BaudHz != 0 {
		opts = append(opts, buses.WithBaud(cfg.BaudHz))
	}

	sensor := NewSPI(bus, cfg.ChipSelect, int1, logger, opts...)
	if err := sensor.Init(ctx); err != nil {
		return nil, err
	}
	return sensor, nil
}

// Check reports whether WHO_AM_I holds the LSM6DS3 identity. A transport failure is logged and
// returned; a different identity is not an error.
func (imu *LSM6DS3) Check(ctx context.Context) (bool, error) {
	id, err := imu.readRegister(ctx, WhoAmI)
	if err != nil {
		imu.logger.Errorw("LSM6DS3 identity check failed", "error", err)
		return false, err
	}
	if id != ExpectedWhoAmI {
		imu.logger.Debugw("unexpected LSM6DS3 identity", "got", id, "want", ExpectedWhoAmI)
		return false, nil
	}
	return true, nil
}

type initStep struct {
	name     string
	register Register
	value    byte
}

// Ordered writes following the software reset. The FIFO reset ends the sequence.
var configurationSteps = []initStep{
	{"accelerometer rate and range", Ctrl1XL, ctrl1XLConfig},
	{"gyroscope rate and range", Ctrl2G, ctrl2GConfig},
	{"block data update", Ctrl3C, ctrl3CConfig},
	{"temperature in FIFO", Ctrl4C, ctrl4CConfig},
	{"accelerometer axes", Ctrl9XL, ctrl9XLConfig},
	{"gyroscope axes", Ctrl10C, ctrl10CConfig},
	{"INT1 on FIFO not empty", Int1Ctrl, int1FIFOEmpty},
	{"FIFO threshold", FIFOCtrl1, fifoThreshold},
	{"pedometer off", FIFOCtrl2, fifoCtrl2Config},
	{"gyroscope and accelerometer decimation", FIFOCtrl3, fifoCtrl3Config},
	{"temperature decimation", FIFOCtrl4, fifoCtrl4Config},
}

// Init verifies the chip's identity, resets it and configures it to stream into the FIFO. The
// first failing step ends Init. Init runs at most once per sensor: a failed sensor must be
// discarded and a new one constructed.
func (imu *LSM6DS3) Init(ctx context.Context) error {
	imu.mu.Lock()
	defer imu.mu.Unlock()

	if imu.initAttempted {
		return ErrInitAttempted
	}
	imu.initAttempted = true

	if imu.int1 == nil {
		return errNoInt1Pin
	}

	ok, err := imu.Check(ctx)
	if err != nil {
		return errors.Wrap(err, "LSM6DS3 init: identity check")
	}
	if !ok {
		return errors.Wrap(movementsensor.ErrIdentityMismatch, "LSM6DS3 init: identity check")
	}

	if err := imu.writeRegister(ctx, Ctrl3C, ctrl3CSoftwareReset); err != nil {
		return errors.Wrap(err, "LSM6DS3 init: software reset")
	}
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "LSM6DS3 init: waiting for reset")
	case <-imu.clock.After(ResetSettleTime):
	}

	for _, step := range configurationSteps {
		if err := imu.writeRegister(ctx, step.register, step.value); err != nil {
			return errors.Wrapf(err, "LSM6DS3 init: %s", step.name)
		}
	}

	if err := imu.resetFIFO(ctx); err != nil {
		return errors.Wrap(err, "LSM6DS3 init: FIFO reset")
	}

	imu.initialized = true
	imu.logger.Debug("LSM6DS3 initialized")
	return nil
}

// EnableConfigAccess switches the register map to the embedded function configuration bank.
func (imu *LSM6DS3) EnableConfigAccess(ctx context.Context) error {
	return errors.Wrap(imu.writeRegister(ctx, FuncCfgAccess, funcCfgAccessEnabled), "can't enable LSM6DS3 config access")
}

// DisableConfigAccess switches the register map back to the main bank.
func (imu *LSM6DS3) DisableConfigAccess(ctx context.Context) error {
	return errors.Wrap(imu.writeRegister(ctx, FuncCfgAccess, funcCfgAccessDisabled), "can't disable LSM6DS3 config access")
}

// Pitch returns the integrated rotation about the x axis in degrees.
func (imu *LSM6DS3) Pitch() float64 {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return imu.pitch
}

// Roll returns the integrated rotation about the y axis in degrees.
func (imu *LSM6DS3) Roll() float64 {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return imu.roll
}

// Yaw returns the integrated rotation about the z axis in degrees.
func (imu *LSM6DS3) Yaw() float64 {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return imu.yaw
}

// Temperature returns the latest temperature in degrees Celsius, 25 until a sample arrives.
func (imu *LSM6DS3) Temperature() float64 {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return imu.temperature
}

// Orientation returns pitch, roll and yaw as x, y and z.
func (imu *LSM6DS3) Orientation() r3.Vector {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return r3.Vector{X: imu.pitch, Y: imu.roll, Z: imu.yaw}
}

// Samples returns how many FIFO element sets have been integrated.
func (imu *LSM6DS3) Samples() uint64 {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return imu.samples
}

// Poll drains the FIFO.
func (imu *LSM6DS3) Poll(ctx context.Context) error {
	return imu.Update(ctx)
}

// Readings returns the integrated orientation and the latest temperature.
func (imu *LSM6DS3) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	if !imu.initialized {
		return nil, movementsensor.ErrNotInitialized
	}
	return map[string]interface{}{
		"pitch":               imu.pitch,
		"roll":                imu.roll,
		"yaw":                 imu.yaw,
		"orientation":         r3.Vector{X: imu.pitch, Y: imu.roll, Z: imu.yaw},
		"temperature_celsius": imu.temperature,
		"samples":             imu.samples,
	}, nil
}

// Close powers down the accelerometer and gyroscope of an initialized chip.
func (imu *LSM6DS3) Close(ctx context.Context) error {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	if !imu.initialized {
		return nil
	}
	imu.initialized = false
	if err := imu.writeRegister(ctx, Ctrl1XL, 0); err != nil {
		return errors.Wrap(err, "can't power down LSM6DS3 accelerometer")
	}
	return errors.Wrap(imu.writeRegister(ctx, Ctrl2G, 0), "can't power down LSM6DS3 gyroscope")
}

func (imu *LSM6DS3) readRegister(ctx context.Context, register Register) (byte, error) {
	buf := make([]byte, 1)
	if err := imu.transport.ReadRegisters(ctx, byte(register), buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (imu *LSM6DS3) writeRegister(ctx context.Context, register Register, value byte) error {
	return imu.transport.WriteRegisters(ctx, byte(register), []byte{value})
}
