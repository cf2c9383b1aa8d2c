// Package fake implements a simulated TFmini on a fake I2C bus.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/tfmini/components/board/genericlinux/buses"
	"go.viam.com/tfmini/logging"
)

// Register addresses and commands the simulated device understands.
const (
	regSlaveAddress     uint16 = 0x26
	regTriggerMode      uint16 = 0x27
	regDetectionRange   uint16 = 0x50
	regDetectionPattern uint16 = 0x51
	regDistanceUnit     uint16 = 0x66
	regFactoryReset     uint16 = 0x70

	cmdReset       byte = 0x06
	frameLength         = 7
	factoryResetOK byte = 0x02
)

// TFmini is a fake I2C bus with one simulated TFmini on it. It follows the device's register
// protocol: a three byte register select followed by a one byte value on the same handle. A
// select left without its value is dropped when the handle closes. Like the real sensor, a new
// slave address is stored but only answered at after PowerCycle.
type TFmini struct {
	mu     sync.Mutex
	busMu  sync.Mutex
	logger logging.Logger

	addr       byte
	storedAddr byte
	selected   *uint16

	rangeMode   byte
	pattern     byte
	unit        byte
	triggerMode byte

	distanceMM uint16
	strength   uint16
}

var _ = buses.I2C(&TFmini{})

// NewTFmini returns a simulated sensor at addr with factory settings, reading 1m.
func NewTFmini(addr byte, logger logging.Logger) *TFmini {
	return &TFmini{
		logger:     logger,
		addr:       addr,
		storedAddr: addr,
		distanceMM: 1000,
		strength:   100,
	}
}

// SetMeasurement sets what the simulated sensor measures.
func (f *TFmini) SetMeasurement(distanceMM, strength uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.distanceMM = distanceMM
	f.strength = strength
}

// PowerCycle makes a stored address change take effect.
func (f *TFmini) PowerCycle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addr = f.storedAddr
	f.selected = nil
}

// Address returns the address the simulated sensor answers at.
func (f *TFmini) Address() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addr
}

// Settings returns the range, detection pattern and unit bytes last written.
func (f *TFmini) Settings() (rangeMode, pattern, unit byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rangeMode, f.pattern, f.unit
}

// OpenHandle locks the bus and returns a handle for addr. Transactions to any address other than
// the one the sensor answers at fail.
func (f *TFmini) OpenHandle(addr byte) (buses.I2CHandle, error) {
	f.busMu.Lock()
	return &tfminiHandle{dev: f, addr: addr}, nil
}

type tfminiHandle struct {
	dev    *TFmini
	addr   byte
	closed bool
}

func (h *tfminiHandle) check(ctx context.Context) error {
	if h.closed {
		return errors.New("handle is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.addr != h.dev.addr {
		return errors.Errorf("no ack from 0x%02x", h.addr)
	}
	return nil
}

func (h *tfminiHandle) Write(ctx context.Context, tx []byte) error {
	f := h.dev
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := h.check(ctx); err != nil {
		return err
	}

	switch {
	case len(tx) == 3 && tx[2] == 0x01:
		reg := uint16(tx[0])<<8 | uint16(tx[1])
		f.selected = &reg
	case len(tx) == 1 && f.selected != nil:
		reg := *f.selected
		f.selected = nil
		return f.apply(ctx, reg, tx[0])
	case len(tx) == 1 && tx[0] == cmdReset:
		f.logger.CDebugw(ctx, "reset", "addr", fmt.Sprintf("0x%02x", f.addr))
	default:
		return errors.Errorf("unexpected write % x", tx)
	}
	return nil
}

// apply stores value into reg. Callers hold f.mu.
func (f *TFmini) apply(ctx context.Context, reg uint16, value byte) error {
	f.logger.CDebugw(ctx, "register write", "register", fmt.Sprintf("0x%04x", reg), "value", value)
	switch reg {
	case regSlaveAddress:
		f.storedAddr = value
	case regTriggerMode:
		f.triggerMode = value
	case regDetectionRange:
		f.rangeMode = value
	case regDetectionPattern:
		f.pattern = value
	case regDistanceUnit:
		f.unit = value
	case regFactoryReset:
		if value != factoryResetOK {
			return errors.Errorf("factory reset value 0x%02x ignored", value)
		}
		f.rangeMode, f.pattern, f.unit = 0, 0, 0
	default:
		return errors.Errorf("unknown register 0x%04x", reg)
	}
	return nil
}

func (h *tfminiHandle) Read(ctx context.Context, count int) ([]byte, error) {
	return nil, errors.New("the sensor only answers a combined write-read")
}

func (h *tfminiHandle) WriteRead(ctx context.Context, tx []byte, count int) ([]byte, error) {
	f := h.dev
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	if len(tx) != 3 || tx[0] != 0x01 || tx[1] != 0x02 || tx[2] != frameLength {
		return nil, errors.Errorf("unexpected query % x", tx)
	}

	dist := f.distanceMM
	if f.unit == 0x01 {
		dist /= 10
	}
	frame := []byte{
		0x00, 0x00,
		byte(dist), byte(dist >> 8),
		byte(f.strength), byte(f.strength >> 8),
		f.rangeMode,
	}
	if count < len(frame) {
		frame = frame[:count]
	}
	return frame, nil
}

func (h *tfminiHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.dev.mu.Lock()
	h.dev.selected = nil
	h.dev.mu.Unlock()
	h.dev.busMu.Unlock()
	return nil
}
