package fake

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/tfmini/logging"
)

func query(t *testing.T, f *TFmini, addr byte) ([]byte, error) {
	t.Helper()
	handle, err := f.OpenHandle(addr)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, handle.Close(), test.ShouldBeNil)
	}()
	return handle.WriteRead(context.Background(), []byte{0x01, 0x02, 0x07}, 7)
}

func writeRegister(t *testing.T, f *TFmini, addr byte, reg, value byte) error {
	t.Helper()
	handle, err := f.OpenHandle(addr)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, handle.Close(), test.ShouldBeNil)
	}()
	if err := handle.Write(context.Background(), []byte{0x00, reg, 0x01}); err != nil {
		return err
	}
	return handle.Write(context.Background(), []byte{value})
}

func TestTFminiFrame(t *testing.T) {
	f := NewTFmini(0x10, logging.NewTestLogger(t))
	f.SetMeasurement(0x0210, 5)

	frame, err := query(t, f, 0x10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame, test.ShouldResemble, []byte{0x00, 0x00, 0x10, 0x02, 0x05, 0x00, 0x00})

	_, err = query(t, f, 0x11)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no ack from 0x11")
}

func TestTFminiRegisters(t *testing.T) {
	f := NewTFmini(0x10, logging.NewTestLogger(t))
	f.SetMeasurement(1234, 7)

	test.That(t, writeRegister(t, f, 0x10, 0x66, 0x01), test.ShouldBeNil)
	frame, err := query(t, f, 0x10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, uint16(frame[2])|uint16(frame[3])<<8, test.ShouldEqual, uint16(123))

	test.That(t, writeRegister(t, f, 0x10, 0x51, 0x01), test.ShouldBeNil)
	test.That(t, writeRegister(t, f, 0x10, 0x50, 0x07), test.ShouldBeNil)
	rangeMode, pattern, unit := f.Settings()
	test.That(t, rangeMode, test.ShouldEqual, byte(0x07))
	test.That(t, pattern, test.ShouldEqual, byte(0x01))
	test.That(t, unit, test.ShouldEqual, byte(0x01))

	test.That(t, writeRegister(t, f, 0x10, 0x70, 0x02), test.ShouldBeNil)
	rangeMode, pattern, unit = f.Settings()
	test.That(t, []byte{rangeMode, pattern, unit}, test.ShouldResemble, []byte{0, 0, 0})

	test.That(t, writeRegister(t, f, 0x10, 0x99, 0x01), test.ShouldNotBeNil)
}

func TestTFminiAddressNeedsPowerCycle(t *testing.T) {
	f := NewTFmini(0x10, logging.NewTestLogger(t))
	test.That(t, writeRegister(t, f, 0x10, 0x26, 0x11), test.ShouldBeNil)
	test.That(t, f.Address(), test.ShouldEqual, byte(0x10))
	_, err := query(t, f, 0x10)
	test.That(t, err, test.ShouldBeNil)

	f.PowerCycle()
	test.That(t, f.Address(), test.ShouldEqual, byte(0x11))
	_, err = query(t, f, 0x10)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = query(t, f, 0x11)
	test.That(t, err, test.ShouldBeNil)
}

func TestTFminiResetAfterAbandonedSelect(t *testing.T) {
	ctx := context.Background()
	f := NewTFmini(0x10, logging.NewTestLogger(t))

	handle, err := f.OpenHandle(0x10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, handle.Write(ctx, []byte{0x00, 0x66, 0x01}), test.ShouldBeNil)
	test.That(t, handle.Close(), test.ShouldBeNil)

	handle, err = f.OpenHandle(0x10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, handle.Write(ctx, []byte{0x06}), test.ShouldBeNil)
	test.That(t, handle.Close(), test.ShouldBeNil)

	// the reset byte must not land in the distance unit register
	_, _, unit := f.Settings()
	test.That(t, unit, test.ShouldEqual, byte(0x00))

	// a value with nothing selected is the reset command, anything else is rejected
	handle, err = f.OpenHandle(0x10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, handle.Write(ctx, []byte{0x01}), test.ShouldNotBeNil)
	test.That(t, handle.Close(), test.ShouldBeNil)
}
