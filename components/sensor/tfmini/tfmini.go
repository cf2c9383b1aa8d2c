// Package tfmini implements a driver for the Benewake TFmini time-of-flight distance sensor in its
// I2C variant.
//
// The device answers a three byte query with a seven byte frame holding distance, signal strength
// and mode. Configuration is done by selecting a two byte register address and then writing a one
// byte value; the device needs 10ms to apply each write.
//
// Some settings do not apply immediately:
//   - a new slave address is only used after the sensor is power cycled. SetAddress reports this
//     as a PendingAddressChange and keeps talking to the old address until the caller confirms the
//     cycle with ConfirmAddressChange or AcknowledgeAddressChange.
//   - the distance unit is not part of the frame. Readings are in whatever unit was last
//     configured, and the driver does not track it.
//
// The driver takes one lock per Device for the duration of each operation, settle delays
// included. It does not retry anything.
package tfmini

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"

	"go.viam.com/tfmini/components/board/genericlinux/buses"
	"go.viam.com/tfmini/components/sensor"
	"go.viam.com/tfmini/logging"
)

// Device is a handle to one sensor on one bus.
type Device struct {
	mu sync.Mutex

	bus     buses.I2C
	busName string
	addr    byte
	pending *PendingAddressChange

	clock  clock.Clock
	logger logging.Logger
}

var _ = sensor.Sensor(&Device{})

// Option configures a Device.
type Option func(*Device)

// WithClock replaces the clock used for settle and reset delays.
func WithClock(c clock.Clock) Option {
	return func(d *Device) {
		d.clock = c
	}
}

// NewDevice returns a handle to the sensor at addr on bus. busName is only used to identify the
// device in logs and status messages. No bus I/O is done.
func NewDevice(bus buses.I2C, busName string, addr byte, logger logging.Logger, opts ...Option) *Device {
	d := &Device{
		bus:     bus,
		busName: busName,
		addr:    addr,
		clock:   clock.New(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Address returns the address the handle currently talks to. A pending address change is not
// reflected here until it is confirmed.
func (d *Device) Address() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

// BusName returns the name of the bus the device is on.
func (d *Device) BusName() string {
	return d.busName
}

// ReadDistance returns the measured distance in the configured unit.
func (d *Device) ReadDistance(ctx context.Context) (uint16, error) {
	m, err := d.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return m.Distance, nil
}

// ReadAll returns the full decoded frame.
func (d *Device) ReadAll(ctx context.Context) (Measurement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame, err := d.queryFrame(ctx)
	if err != nil {
		return Measurement{}, err
	}
	return Decode(frame), nil
}

// Reset reboots the sensor and waits 50ms for it to come back.
func (d *Device) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reset(ctx)
}

// FactoryReset restores factory settings. The slave address and trigger mode are kept by the
// device.
func (d *Device) FactoryReset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(ctx, RegisterFactoryReset, factoryResetValue)
}

// Close does nothing; the device holds no bus resources between calls.
func (d *Device) Close(ctx context.Context) error {
	return nil
}
