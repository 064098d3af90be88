// Package movementsensor defines the interface shared by the register-addressed motion sensors.
package movementsensor

import (
	"context"

	"github.com/pkg/errors"
)

// A Sensor is a motion sensor the application polls.
type Sensor interface {
	// Poll performs one round of device I/O. Streaming sensors drain whatever the device has
	// buffered; single-shot sensors take one sample.
	Poll(ctx context.Context) error

	// Readings returns the sensor's latest values keyed by name.
	Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error)

	// Close releases the sensor. It does not close the bus the sensor was constructed with.
	Close(ctx context.Context) error
}

var (
	// ErrIdentityMismatch is returned when a device answers with an unexpected identity register.
	ErrIdentityMismatch = errors.New("unexpected device identity")
	// ErrNotInitialized is returned when a sensor is used before a successful initialization.
	ErrNotInitialized = errors.New("sensor is not initialized")
)
