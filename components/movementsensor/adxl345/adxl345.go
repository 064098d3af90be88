// Package adxl345 implements a driver for the ADXL345 3-axis accelerometer over I2C. A datasheet for
// this chip is at https://www.analog.com/media/en/technical-documentation/data-sheets/ADXL345.pdf
//
// The driver verifies the chip's identity, configures measurement range and power mode, and reads
// raw samples. It does not convert samples to physical units.
//
// The chip has two possible I2C addresses, which can be selected by wiring the ALT ADDRESS pin to
// either ground or hot:
//   - if it is wired to ground, the chip uses the default address of 0x53
//   - if it is wired to hot, the chip uses the alternate address of 0x1D
//
// If you use the alternate address, your config file for this component must set its
// "use_alt_i2c_address" boolean to true.
package adxl345

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/components/board/genericlinux/buses"
	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/logging"
	"go.viam.com/motionsensors/registry"
	"go.viam.com/motionsensors/utils"
)

// Model is the registry name of this driver.
const Model = "adxl345"

// Range is the full-scale measurement range written to DATA_FORMAT.
type Range byte

// The supported ranges.
const (
	Range2G  Range = 0x00
	Range4G  Range = 0x01
	Range8G  Range = 0x02
	Range16G Range = 0x03
)

// RangeFromG returns the Range for a full-scale value in g: 2, 4, 8 or 16.
func RangeFromG(g int) (Range, error) {
	switch g {
	case 2:
		return Range2G, nil
	case 4:
		return Range4G, nil
	case 8:
		return Range8G, nil
	case 16:
		return Range16G, nil
	}
	return 0, errors.Errorf("unsupported range %dg, must be one of 2, 4, 8, 16", g)
}

// Config is used to configure the attributes of the chip.
type Config struct {
	I2cBus                 string        `json:"i2c_bus"`
	UseAlternateI2CAddress bool          `json:"use_alt_i2c_address,omitempty"`
	RangeG                 int           `json:"range_g,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.I2cBus == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "i2c_bus")
	}
	if cfg.RangeG != 0 {
		if _, err := RangeFromG(cfg.RangeG); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
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

// SensorData is one raw sample: DATA_FORMAT followed by DATAX0 through DATAZ1.
type SensorData [sensorDataLength]byte

// Format returns the DATA_FORMAT register the sample was read with.
func (d SensorData) Format() byte {
	return d[0]
}

// RawX returns the x axis in device counts.
func (d SensorData) RawX() int16 {
	return utils.Int16FromBytesLE(d[1:3])
}

// RawY returns the y axis in device counts.
func (d SensorData) RawY() int16 {
	return utils.Int16FromBytesLE(d[3:5])
}

// RawZ returns the z axis in device counts.
func (d SensorData) RawZ() int16 {
	return utils.Int16FromBytesLE(d[5:7])
}

// ADXL345 is an accelerometer reached through a register transport.
type ADXL345 struct {
	transport buses.RegisterTransport
	logger    logging.Logger

	mu     sync.Mutex
	latest SensorData
	// Whether latest holds a sample read from the chip.
	hasSample bool
}

// New returns a driver using an already attached transport. No I/O happens until the first call.
func New(transport buses.RegisterTransport, logger logging.Logger) *ADXL345 {
	return &ADXL345{transport: transport, logger: logger}
}

// NewI2C returns a driver for the chip on bus, at the alternate address if alternateAddress is set.
func NewI2C(bus buses.I2C, alternateAddress bool, logger logging.Logger, opts ...buses.TransportOption) *ADXL345 {
	address := DefaultAddress
	if alternateAddress {
		address = AlternateAddress
	}
	logger.Debugf("using address 0x%02x for ADXL345 sensor", address)
	return New(buses.NewI2CRegisterTransport(bus, address, opts...), logger)
}

func newFromBoard(ctx context.Context, b board.Board, cfg *Config, logger logging.Logger) (*ADXL345, error) {
	bus, ok := b.I2CByName(cfg.I2cBus)
	if !ok {
		return nil, errors.Errorf("can't find I2C bus '%s' for ADXL345 sensor", cfg.I2cBus)
	}
	r := Range2G
	if cfg.RangeG != 0 {
		var err error
		if r, err = RangeFromG(cfg.RangeG); err != nil {
			return nil, err
		}
	}

	sensor := NewI2C(bus, cfg.UseAlternateI2CAddress, logger, buses.WithTimeout(cfg.Timeout))
	ok, err := sensor.Check(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(movementsensor.ErrIdentityMismatch, "no ADXL345 on I2C bus %s", cfg.I2cBus)
	}
	if err := sensor.SetDataFormat(ctx, false, r); err != nil {
		return nil, err
	}
	// The chip starts in standby. Measurement mode starts sampling.
	if err := sensor.SetPowerControl(ctx, false, false, true, false); err != nil {
		return nil, err
	}
	return sensor, nil
}

// DeviceID reads the DEVID register.
func (adxl *ADXL345) DeviceID(ctx context.Context) (byte, error) {
	buf := make([]byte, 1)
	if err := adxl.transport.ReadRegisters(ctx, regDevID, buf); err != nil {
		return 0, errors.Wrap(err, "can't read ADXL345 device id")
	}
	return buf[0], nil
}

// Check reports whether the chip answers with the ADXL345 device id. A transport failure is
// logged and returned; a different id is not an error.
func (adxl *ADXL345) Check(ctx context.Context) (bool, error) {
	id, err := adxl.DeviceID(ctx)
	if err != nil {
		adxl.logger.Errorw("ADXL345 identity check failed", "error", err)
		return false, err
	}
	if id != ExpectedDeviceID {
		adxl.logger.Debugw("unexpected ADXL345 device id", "got", id, "want", ExpectedDeviceID)
		return false, nil
	}
	return true, nil
}

// SetPowerControl writes POWER_CTL with the link, auto sleep, measure and sleep bits.
func (adxl *ADXL345) SetPowerControl(ctx context.Context, link, autoSleep, measure, sleep bool) error {
	var value byte
	if link {
		value |= powerLink
	}
	if autoSleep {
		value |= powerAutoSleep
	}
	if measure {
		value |= powerMeasure
	}
	if sleep {
		value |= powerSleep
	}
	return errors.Wrap(adxl.transport.WriteRegisters(ctx, regPowerCtl, []byte{value}), "can't set ADXL345 power control")
}

// SetDataFormat writes DATA_FORMAT with the self test bit and the measurement range. Every other
// bit is left clear, which selects 10-bit right-justified samples.
func (adxl *ADXL345) SetDataFormat(ctx context.Context, selfTest bool, r Range) error {
	if byte(r)&^formatRangeMask != 0 {
		return errors.Errorf("invalid ADXL345 range 0x%02x", byte(r))
	}
	value := byte(r)
	if selfTest {
		value |= formatSelfTest
	}
	return errors.Wrap(adxl.transport.WriteRegisters(ctx, regDataFormat, []byte{value}), "can't set ADXL345 data format")
}

// ReadSensorData reads DATA_FORMAT and the six data registers in one transaction.
func (adxl *ADXL345) ReadSensorData(ctx context.Context) (SensorData, error) {
	var data SensorData
	if err := adxl.transport.ReadRegisters(ctx, regDataFormat, data[:]); err != nil {
		return SensorData{}, errors.Wrap(err, "can't read ADXL345 sensor data")
	}
	return data, nil
}

// Poll reads one sample and keeps it for Readings.
func (adxl *ADXL345) Poll(ctx context.Context) error {
	data, err := adxl.ReadSensorData(ctx)
	if err != nil {
		return err
	}
	adxl.mu.Lock()
	defer adxl.mu.Unlock()
	adxl.latest = data
	adxl.hasSample = true
	return nil
}

// Readings returns the raw axes of the latest polled sample.
func (adxl *ADXL345) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	adxl.mu.Lock()
	defer adxl.mu.Unlock()
	if !adxl.hasSample {
		return nil, errors.New("no ADXL345 sample has been read yet")
	}
	return map[string]interface{}{
		"x":           adxl.latest.RawX(),
		"y":           adxl.latest.RawY(),
		"z":           adxl.latest.RawZ(),
		"data_format": adxl.latest.Format(),
	}, nil
}

// Close puts the chip back into standby.
func (adxl *ADXL345) Close(ctx context.Context) error {
	return adxl.SetPowerControl(ctx, false, false, false, false)
}
