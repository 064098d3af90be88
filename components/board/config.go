package board

import (
	"go.viam.com/motionsensors/utils"
)

// SPIConfig enumerates a specific, shareable SPI bus.
type SPIConfig struct {
	Name      string `json:"name"`
	BusSelect string `json:"bus_select"` // the N of /dev/spidevN.M
}

// Validate ensures all parts of the config are valid.
func (config *SPIConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.BusSelect == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "bus_select")
	}
	return nil
}

// I2CConfig enumerates a specific, shareable I2C bus.
type I2CConfig struct {
	Name string `json:"name"`
	Bus  string `json:"bus"`
}

// Validate ensures all parts of the config are valid.
func (config *I2CConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.Bus == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "bus")
	}
	return nil
}

// GPIOConfig names one input line of a GPIO chip.
type GPIOConfig struct {
	Name string `json:"name"`
	// Chip is the GPIO character device, for example /dev/gpiochip0.
	Chip string `json:"chip"`
	Line uint32 `json:"line"`
}

// Validate ensures all parts of the config are valid.
func (config *GPIOConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.Chip == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "chip")
	}
	return nil
}
