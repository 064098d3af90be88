package lsm6ds3

// Register is a register address of the LSM6DS3.
type Register byte

// The register map.
const (
	FuncCfgAccess       Register = 0x01
	SensorSyncTimeFrame Register = 0x04
	FIFOCtrl1           Register = 0x06
	FIFOCtrl2           Register = 0x07
	FIFOCtrl3           Register = 0x08
	FIFOCtrl4           Register = 0x09
	FIFOCtrl5           Register = 0x0A
	OrientCfgG          Register = 0x0B
	Int1Ctrl            Register = 0x0D
	Int2Ctrl            Register = 0x0E
	WhoAmI              Register = 0x0F
	Ctrl1XL             Register = 0x10
	Ctrl2G              Register = 0x11
	Ctrl3C              Register = 0x12
	Ctrl4C              Register = 0x13
	Ctrl5C              Register = 0x14
	Ctrl6C              Register = 0x15
	Ctrl7G              Register = 0x16
	Ctrl8XL             Register = 0x17
	Ctrl9XL             Register = 0x18
	Ctrl10C             Register = 0x19
	MasterConfig        Register = 0x1A
	WakeUpSrc           Register = 0x1B
	TapSrc              Register = 0x1C
	D6DSrc              Register = 0x1D
	StatusReg           Register = 0x1E
	OutTempL            Register = 0x20
	OutTempH            Register = 0x21
	OutXLG              Register = 0x22
	OutXHG              Register = 0x23
	OutYLG              Register = 0x24
	OutYHG              Register = 0x25
	OutZLG              Register = 0x26
	OutZHG              Register = 0x27
	OutXLXL             Register = 0x28
	OutXHXL             Register = 0x29
	OutYLXL             Register = 0x2A
	OutYHXL             Register = 0x2B
	OutZLXL             Register = 0x2C
	OutZHXL             Register = 0x2D
	SensorHub1Reg       Register = 0x2E
	SensorHub2Reg       Register = 0x2F
	SensorHub3Reg       Register = 0x30
	SensorHub4Reg       Register = 0x31
	SensorHub5Reg       Register = 0x32
	SensorHub6Reg       Register = 0x33
	SensorHub7Reg       Register = 0x34
	SensorHub8Reg       Register = 0x35
	SensorHub9Reg       Register = 0x36
	SensorHub10Reg      Register = 0x37
	SensorHub11Reg      Register = 0x38
	SensorHub12Reg      Register = 0x39
	FIFOStatus1         Register = 0x3A
	FIFOStatus2         Register = 0x3B
	FIFOStatus3         Register = 0x3C
	FIFOStatus4         Register = 0x3D
	FIFODataOutL        Register = 0x3E
	FIFODataOutH        Register = 0x3F
	Timestamp0Reg       Register = 0x40
	Timestamp1Reg       Register = 0x41
	Timestamp2Reg       Register = 0x42
	StepTimestampL      Register = 0x49
	StepTimestampH      Register = 0x4A
	StepCounterL        Register = 0x4B
	StepCounterH        Register = 0x4C
	SensorHub13Reg      Register = 0x4D
	SensorHub14Reg      Register = 0x4E
	SensorHub15Reg      Register = 0x4F
	SensorHub16Reg      Register = 0x50
	SensorHub17Reg      Register = 0x51
	SensorHub18Reg      Register = 0x52
	FuncSrc             Register = 0x53
	TapCfg              Register = 0x58
	TapThs6D            Register = 0x59
	IntDur2             Register = 0x5A
	WakeUpThs           Register = 0x5B
	WakeUpDur           Register = 0x5C
	FreeFall            Register = 0x5D
	MD1Cfg              Register = 0x5E
	MD2Cfg              Register = 0x5F
	OutMagRawXL         Register = 0x66
	OutMagRawXH         Register = 0x67
	OutMagRawYL         Register = 0x68
	OutMagRawYH         Register = 0x69
	OutMagRawZL         Register = 0x6A
	OutMagRawZH         Register = 0x6B
)

// ExpectedWhoAmI is the fixed content of WHO_AM_I.
const ExpectedWhoAmI byte = 0x69

// Values written during initialization.
const (
	ctrl3CSoftwareReset byte = 0x01

	// 1660 Hz, +/-8 g, 400 Hz anti-aliasing bandwidth.
	ctrl1XLConfig byte = 0x8C

	// 1660 Hz, 1000 dps.
	ctrl2GConfig byte = 0x88

	// Block data update, register address auto increment.
	ctrl3CConfig byte = 0x44

	// Temperature stored in the FIFO.
	ctrl4CConfig byte = 0x10

	// X, Y and Z axes enabled.
	ctrl9XLConfig byte = 0x38
	ctrl10CConfig byte = 0x38

	int1FIFOEmpty   byte = 0x08
	fifoThreshold   byte = 0x01
	fifoCtrl2Config byte = 0x00

	// No decimation for gyro and accelerometer.
	fifoCtrl3Config byte = 0x09

	// No decimation for temperature.
	fifoCtrl4Config byte = 0x08

	fifoDisabled byte = 0x00

	// 1660 Hz FIFO rate, continuous mode.
	fifoContinuous byte = 0x46

	funcCfgAccessEnabled  byte = 0x80
	funcCfgAccessDisabled byte = 0x00
)

// FIFO_STATUS1/2 as one little-endian word.
const (
	fifoStatusUnreadMask uint16 = 0x0FFF
	fifoStatusEmpty      uint16 = 1 << 12
	fifoStatusFullSmart  uint16 = 1 << 13
	fifoStatusOverrun    uint16 = 1 << 14
	fifoStatusWatermark  uint16 = 1 << 15
	fifoPatternMask      uint16 = 0x03FF
)
