package adxl345

// Register addresses.
const (
	regDevID      byte = 0x00
	regPowerCtl   byte = 0x2D
	regDataFormat byte = 0x31
	regDataX0     byte = 0x32
	regDataX1     byte = 0x33
	regDataY0     byte = 0x34
	regDataY1     byte = 0x35
	regDataZ0     byte = 0x36
	regDataZ1     byte = 0x37
)

// ExpectedDeviceID is the fixed content of the DEVID register.
const ExpectedDeviceID byte = 0xE5

// 7-bit I2C addresses, selected by the ALT ADDRESS pin.
const (
	DefaultAddress   byte = 0x53
	AlternateAddress byte = 0x1D
)

// POWER_CTL bits.
const (
	powerLink      byte = 1 << 5
	powerAutoSleep byte = 1 << 4
	powerMeasure   byte = 1 << 3
	powerSleep     byte = 1 << 2
)

// DATA_FORMAT bits.
const (
	formatSelfTest  byte = 1 << 7
	formatRangeMask byte = 0x03
)

// sensorDataLength covers DATA_FORMAT followed by the six data registers.
const sensorDataLength = int(regDataZ1-regDataFormat) + 1
