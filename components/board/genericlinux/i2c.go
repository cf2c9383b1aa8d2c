// Package genericlinux implements the I2C bus contract on Linux hosts using periph.io, which talks
// to /dev/i2c-N through the kernel's i2c-dev interface.
package genericlinux

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"go.viam.com/tfmini/components/board/genericlinux/buses"
	"go.viam.com/tfmini/logging"
)

var (
	hostInitOnce sync.Once
	errHostInit  error
)

func initHost() error {
	hostInitOnce.Do(func() {
		_, errHostInit = host.Init()
	})
	return errHostInit
}

// I2CBus is one physical I2C bus. Only one handle can be open at a time; OpenHandle blocks until
// the previous handle is closed, which serializes concurrent callers on the same bus.
type I2CBus struct {
	mu     sync.Mutex
	name   string
	bus    i2c.BusCloser
	logger logging.Logger
}

var _ = buses.I2C(&I2CBus{})

// NewI2CBus opens the named bus (e.g. "1" or "/dev/i2c-1"). An empty name opens the first bus
// the host reports.
func NewI2CBus(name string, logger logging.Logger) (*I2CBus, error) {
	if err := initHost(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph host drivers")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open i2c bus %q", name)
	}
	return newI2CBusFrom(name, bus, logger), nil
}

func newI2CBusFrom(name string, bus i2c.BusCloser, logger logging.Logger) *I2CBus {
	return &I2CBus{name: name, bus: bus, logger: logger}
}

// Name returns the name the bus was opened with.
func (b *I2CBus) Name() string {
	return b.name
}

// OpenHandle locks the bus and returns a handle for the device at addr.
func (b *I2CBus) OpenHandle(addr byte) (buses.I2CHandle, error) {
	if addr > 0x7F {
		return nil, errors.Errorf("i2c address 0x%02x is not a 7-bit address", addr)
	}
	b.mu.Lock()
	return &i2cHandle{bus: b, dev: &i2c.Dev{Bus: b.bus, Addr: uint16(addr)}}, nil
}

// Close releases the underlying bus.
func (b *I2CBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Close()
}

type i2cHandle struct {
	bus    *I2CBus
	dev    *i2c.Dev
	closed bool
}

func (h *i2cHandle) tx(ctx context.Context, w, r []byte) error {
	if h.closed {
		return errors.New("i2c handle is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h.bus.logger.CDebugw(ctx, "i2c tx", "bus", h.bus.name, "addr", h.dev.Addr, "write", w, "read_len", len(r))
	return h.dev.Tx(w, r)
}

func (h *i2cHandle) Write(ctx context.Context, tx []byte) error {
	if err := h.tx(ctx, tx, nil); err != nil {
		return errors.Wrapf(err, "i2c write to 0x%02x on bus %s", h.dev.Addr, h.bus.name)
	}
	return nil
}

func (h *i2cHandle) Read(ctx context.Context, count int) ([]byte, error) {
	buffer := make([]byte, count)
	if err := h.tx(ctx, nil, buffer); err != nil {
		return nil, errors.Wrapf(err, "i2c read from 0x%02x on bus %s", h.dev.Addr, h.bus.name)
	}
	return buffer, nil
}

func (h *i2cHandle) WriteRead(ctx context.Context, tx []byte, count int) ([]byte, error) {
	buffer := make([]byte, count)
	if err := h.tx(ctx, tx, buffer); err != nil {
		return nil, errors.Wrapf(err, "i2c write/read with 0x%02x on bus %s", h.dev.Addr, h.bus.name)
	}
	return buffer, nil
}

func (h *i2cHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.bus.mu.Unlock()
	return nil
}
