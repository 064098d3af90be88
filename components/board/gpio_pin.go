package board

import "context"

// A GPIOPin represents an individual GPIO pin on a board. The drivers only read pins, for
// example to poll an interrupt line that a sensor holds high while it has data.
type GPIOPin interface {
	// Get gets the high/low state of the pin.
	Get(ctx context.Context, extra map[string]interface{}) (bool, error)
}
