package tfmini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/tfmini/components/board/genericlinux/buses"
)

const (
	cmdRead     byte = 0x01
	cmdDistance byte = 0x02
	cmdReset    byte = 0x06

	// The device needs this long after a register write before the value is applied.
	settleDelay = 10 * time.Millisecond
	// The device reboots after a reset command and ignores the bus meanwhile.
	resetDelay = 50 * time.Millisecond
)

// session opens a handle to the device, runs fn and closes the handle. Every operation gets its
// own session; nothing is held open between calls. Callers hold d.mu.
func (d *Device) session(ctx context.Context, op string, fn func(handle buses.I2CHandle) error) error {
	handle, err := d.bus.OpenHandle(d.addr)
	if err != nil {
		return &TransportError{Op: op, Address: d.addr, Err: err}
	}
	err = fn(handle)
	if closeErr := handle.Close(); closeErr != nil {
		err = multierr.Combine(err, &TransportError{Op: op + closeOpSuffix, Address: d.addr, Err: closeErr})
	}
	return err
}

const closeOpSuffix = ": close"

// onlyCloseFailed reports whether err comes from closing the handle alone, meaning every
// transaction inside the session was acknowledged.
func onlyCloseFailed(err error) bool {
	errs := multierr.Errors(err)
	if len(errs) != 1 {
		return false
	}
	var transportErr *TransportError
	return errors.As(errs[0], &transportErr) && strings.HasSuffix(transportErr.Op, closeOpSuffix)
}

// writeRegister selects reg, writes value and waits for the device to settle.
func (d *Device) writeRegister(ctx context.Context, reg Register, value byte) error {
	op := fmt.Sprintf("write %v", reg)
	d.logger.CDebugw(ctx, "register write", "addr", d.addr, "register", reg.String(), "value", value)
	err := d.session(ctx, op, func(handle buses.I2CHandle) error {
		if err := handle.Write(ctx, reg.Bytes()); err != nil {
			return &TransportError{Op: op + ": select register", Address: d.addr, Err: err}
		}
		if err := handle.Write(ctx, []byte{value}); err != nil {
			return &TransportError{Op: op + ": write value", Address: d.addr, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.clock.Sleep(settleDelay)
	return nil
}

// queryFrame asks for a measurement and reads the frame back in the same bus transaction. The
// device does not answer if the bus is released between the command and the read.
func (d *Device) queryFrame(ctx context.Context) (Frame, error) {
	const op = "query frame"
	var data []byte
	err := d.session(ctx, op, func(handle buses.I2CHandle) error {
		var err error
		data, err = handle.WriteRead(ctx, []byte{cmdRead, cmdDistance, FrameLength}, FrameLength)
		if err != nil {
			return &TransportError{Op: op, Address: d.addr, Err: err}
		}
		return nil
	})
	if err != nil {
		return Frame{}, err
	}
	if len(data) != FrameLength {
		return Frame{}, &ProtocolError{
			Op:      op,
			Address: d.addr,
			Reason:  fmt.Sprintf("got %d byte frame, want %d", len(data), FrameLength),
		}
	}

	var frame Frame
	copy(frame[:], data)
	d.logger.CDebugw(ctx, "frame", "addr", d.addr, "bytes", data)
	return frame, nil
}

// reset reboots the device. Completion is not verified; a call made before the device is back
// fails at the bus and is reported as a TransportError.
func (d *Device) reset(ctx context.Context) error {
	const op = "reset"
	err := d.session(ctx, op, func(handle buses.I2CHandle) error {
		if err := handle.Write(ctx, []byte{cmdReset}); err != nil {
			return &TransportError{Op: op, Address: d.addr, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.clock.Sleep(resetDelay)
	return nil
}
