// Package config defines the structures that configure a board and the sensors attached to it.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/motionsensors/components/board/genericlinux"
	"go.viam.com/motionsensors/utils"
)

// DefaultPollInterval is how often sensors are polled when the config does not say.
const DefaultPollInterval = 10 * time.Millisecond

// Config describes a board, the sensors attached to it, and how often to poll them.
type Config struct {
	ConfigFilePath string `json:"-"`

	Board      genericlinux.Config `json:"board"`
	Components []Component         `json:"components,omitempty"`
	// PollInterval is a Go duration string such as "10ms".
	PollInterval string `json:"poll_interval,omitempty"`
	Debug        bool   `json:"debug,omitempty"`
}

// Ensure ensures all parts of the config are valid.
func (c *Config) Ensure() error {
	if err := c.Board.Validate("board"); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Components))
	for idx := range c.Components {
		comp := &c.Components[idx]
		if err := comp.Validate(fmt.Sprintf("%s.%d", "components", idx)); err != nil {
			return err
		}
		if _, ok := seen[comp.Name]; ok {
			return errors.Errorf("component name %q is not unique", comp.Name)
		}
		seen[comp.Name] = struct{}{}
	}
	if _, err := c.PollDuration(); err != nil {
		return utils.NewConfigValidationError("poll_interval", err)
	}
	return nil
}

// PollDuration parses PollInterval, falling back to DefaultPollInterval when it is empty.
func (c *Config) PollDuration() (time.Duration, error) {
	if c.PollInterval == "" {
		return DefaultPollInterval, nil
	}
	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, errors.Errorf("poll interval must be positive, got %s", interval)
	}
	return interval, nil
}

// A Component describes one sensor: its name, model, and the model-specific attributes.
type Component struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	Attributes AttributeMap `json:"attributes,omitempty"`

	// ConvertedAttributes holds Attributes converted to the model's config struct.
	ConvertedAttributes interface{} `json:"-"`
}

// Validator is implemented by converted attribute structs.
type Validator interface {
	Validate(path string) error
}

// Validate ensures all parts of the component config are valid, including the converted
// attributes when they have been set.
func (c *Component) Validate(path string) error {
	if c.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if c.Model == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	}
	if validator, ok := c.ConvertedAttributes.(Validator); ok {
		return validator.Validate(fmt.Sprintf("%s.%s", path, "attributes"))
	}
	return nil
}
