package genericlinux

import (
	"fmt"

	"go.viam.com/motionsensors/components/board"
)

// A Config describes the buses and pins a Linux board exposes to the sensors.
type Config struct {
	I2Cs     []board.I2CConfig  `json:"i2cs,omitempty"`
	SPIs     []board.SPIConfig  `json:"spis,omitempty"`
	GPIOPins []board.GPIOConfig `json:"gpio_pins,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for idx, c := range conf.SPIs {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "spis", idx)); err != nil {
			return err
		}
	}
	for idx, c := range conf.I2Cs {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "i2cs", idx)); err != nil {
			return err
		}
	}
	for idx, c := range conf.GPIOPins {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "gpio_pins", idx)); err != nil {
			return err
		}
	}
	return nil
}
