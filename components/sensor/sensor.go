// Package sensor defines an abstract sensing device that can provide measurement readings.
package sensor

import (
	"context"

	"github.com/pkg/errors"
)

// A Sensor represents a general purpose sensor that can give arbitrary readings
// of some thing that it is sensing.
type Sensor interface {
	// Readings return data specific to the type of sensor and can be of any type.
	Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error)
	// DoCommand sends and receives arbitrary, model specific commands.
	DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error)
	// Close releases anything the sensor holds.
	Close(ctx context.Context) error
}

// ErrUnknownCommand is returned by DoCommand when none of the command keys are recognized.
var ErrUnknownCommand = errors.New("unknown command")
