package tfmini

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/tfmini/components/sensor"
)

func TestReadings(t *testing.T) {
	d, bus, _ := setupDevice(t, 0x10)
	readings, err := d.Readings(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, readings, test.ShouldResemble, map[string]interface{}{
		"distance":     528,
		"strength":     5,
		"trigger_flag": 0,
		"mode":         0,
	})

	bus.frameErr = errors.New("no ack")
	_, err = d.Readings(context.Background(), nil)
	test.That(t, IsTransportError(err), test.ShouldBeTrue)
}

func TestDoCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("reset", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)
		resp, err := d.DoCommand(ctx, map[string]interface{}{"reset": true})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["status"], test.ShouldEqual, "reset")
		test.That(t, bus.transactions()[0].data, test.ShouldResemble, []byte{0x06})
	})

	t.Run("factory_reset", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)
		resp, err := d.DoCommand(ctx, map[string]interface{}{"factory_reset": true})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["status"], test.ShouldEqual, "factory_reset")
		test.That(t, bus.registerWrites(), test.ShouldResemble, []RegisterWrite{{RegisterFactoryReset, 0x02}})
	})

	t.Run("set_range", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)
		resp, err := d.DoCommand(ctx, map[string]interface{}{"set_range": "long"})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["range"], test.ShouldEqual, "long")
		test.That(t, bus.registerWrites(), test.ShouldResemble, []RegisterWrite{
			{RegisterDetectionPattern, 0x01},
			{RegisterDetectionRange, 0x07},
		})

		_, err = d.DoCommand(ctx, map[string]interface{}{"set_range": "far"})
		test.That(t, IsValidationError(err), test.ShouldBeTrue)
		_, err = d.DoCommand(ctx, map[string]interface{}{"set_range": 3})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "expected string")
	})

	t.Run("set_unit", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)
		resp, err := d.DoCommand(ctx, map[string]interface{}{"set_unit": "cm"})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["unit"], test.ShouldEqual, "cm")
		test.That(t, bus.registerWrites(), test.ShouldResemble, []RegisterWrite{{RegisterDistanceUnit, 0x01}})
	})

	t.Run("set_address then confirm_address", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)

		_, err := d.DoCommand(ctx, map[string]interface{}{"confirm_address": true})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "no address change is pending")

		// JSON numbers arrive as float64
		resp, err := d.DoCommand(ctx, map[string]interface{}{"set_address": float64(17)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["current_address"], test.ShouldEqual, 0x10)
		test.That(t, resp["pending_address"], test.ShouldEqual, 0x11)
		test.That(t, resp["state"], test.ShouldEqual, "pending_power_cycle")
		test.That(t, d.Address(), test.ShouldEqual, byte(0x10))

		bus.frames = map[byte][]byte{0x11: sampleFrame}
		resp, err = d.DoCommand(ctx, map[string]interface{}{"confirm_address": true})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["current_address"], test.ShouldEqual, 0x11)
		test.That(t, resp["state"], test.ShouldEqual, "applied")
		test.That(t, d.Address(), test.ShouldEqual, byte(0x11))
	})

	t.Run("set_address rejects bad values before any I/O", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)
		for _, val := range []interface{}{float64(17.5), 0x79, 0x0F, "0x11"} {
			_, err := d.DoCommand(ctx, map[string]interface{}{"set_address": val})
			test.That(t, err, test.ShouldNotBeNil)
		}
		test.That(t, bus.opens, test.ShouldEqual, 0)
	})

	t.Run("unknown and malformed commands", func(t *testing.T) {
		d, bus, _ := setupDevice(t, 0x10)
		_, err := d.DoCommand(ctx, map[string]interface{}{"calibrate": true})
		test.That(t, errors.Is(err, sensor.ErrUnknownCommand), test.ShouldBeTrue)

		_, err = d.DoCommand(ctx, map[string]interface{}{})
		test.That(t, err, test.ShouldNotBeNil)
		_, err = d.DoCommand(ctx, map[string]interface{}{"reset": true, "set_unit": "mm"})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, bus.opens, test.ShouldEqual, 0)
	})
}
