package lsm6ds3

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/utils"
)

// ElementSetWords is the number of 16-bit words the FIFO holds per sample: gyroscope x, y, z,
// accelerometer x, y, z, then a temperature pattern of which only the second word carries data.
const ElementSetWords = 9

const elementSetBytes = 2 * ElementSetWords

// Word positions within an element set.
const (
	wordGyroX = 0
	wordGyroY = 1
	wordGyroZ = 2
	wordTemp  = 7
)

// Degrees of rotation per gyroscope count in one sample period.
const degreesPerCount = GyroLSB / OutputDataRate

// Update drains the FIFO while INT1 is high, one element set per read, and integrates each set
// into pitch, roll and yaw. An empty FIFO is not an error. A failed read ends Update; sets already
// integrated stay integrated.
func (imu *LSM6DS3) Update(ctx context.Context) error {
	imu.mu.Lock()
	defer imu.mu.Unlock()

	if !imu.initialized {
		return movementsensor.ErrNotInitialized
	}

	buf := make([]byte, elementSetBytes)
	for drained := 0; ; drained++ {
		pending, err := imu.int1.Get(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "can't read LSM6DS3 INT1")
		}
		if !pending {
			if drained > 0 {
				imu.logger.Debugw("drained FIFO", "sets", drained)
			}
			return nil
		}
		if err := imu.transport.ReadRegisters(ctx, byte(FIFODataOutL), buf); err != nil {
			return errors.Wrapf(err, "can't read LSM6DS3 FIFO after %d sets", drained)
		}
		imu.integrate(utils.Int16sFromBytesLE(buf))
	}
}

// integrate applies one element set. The accelerometer words are not used. Callers hold mu.
func (imu *LSM6DS3) integrate(words []int16) {
	imu.pitch += float64(words[wordGyroX]) * degreesPerCount
	imu.roll += float64(words[wordGyroY]) * degreesPerCount
	imu.yaw += float64(words[wordGyroZ]) * degreesPerCount
	imu.temperature = TempOffset + float64(words[wordTemp])*TempLSB
	imu.samples++
}

// ResetFIFO empties the FIFO by disabling it, then restarts it in continuous mode at 1660 Hz.
func (imu *LSM6DS3) ResetFIFO(ctx context.Context) error {
	imu.mu.Lock()
	defer imu.mu.Unlock()
	return imu.resetFIFO(ctx)
}

func (imu *LSM6DS3) resetFIFO(ctx context.Context) error {
	if err := imu.writeRegister(ctx, FIFOCtrl5, fifoDisabled); err != nil {
		return errors.Wrap(err, "can't disable LSM6DS3 FIFO")
	}
	return errors.Wrap(imu.writeRegister(ctx, FIFOCtrl5, fifoContinuous), "can't enable LSM6DS3 FIFO")
}

// FIFOStatus is the decoded content of FIFO_STATUS1 through FIFO_STATUS4.
type FIFOStatus struct {
	// UnreadWords counts 16-bit words, not element sets.
	UnreadWords uint16
	Empty       bool
	Full        bool
	Overrun     bool
	Watermark   bool
	// Pattern is the index of the next word to be read within the element set.
	Pattern uint16
}

// UnreadSets returns how many whole element sets are waiting.
func (status FIFOStatus) UnreadSets() int {
	return int(status.UnreadWords) / ElementSetWords
}

// FIFOStatus reads the FIFO status registers.
func (imu *LSM6DS3) FIFOStatus(ctx context.Context) (FIFOStatus, error) {
	buf := make([]byte, 4)
	if err := imu.transport.ReadRegisters(ctx, byte(FIFOStatus1), buf); err != nil {
		return FIFOStatus{}, errors.Wrap(err, "can't read LSM6DS3 FIFO status")
	}
	word := uint16(utils.Int16FromBytesLE(buf[0:2]))
	return FIFOStatus{
		UnreadWords: word & fifoStatusUnreadMask,
		Empty:       word&fifoStatusEmpty != 0,
		Full:        word&fifoStatusFullSmart != 0,
		Overrun:     word&fifoStatusOverrun != 0,
		Watermark:   word&fifoStatusWatermark != 0,
		Pattern:     uint16(utils.Int16FromBytesLE(buf[2:4])) & fifoPatternMask,
	}, nil
}
