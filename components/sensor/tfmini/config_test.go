package tfmini

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/tfmini/logging"
)

func TestValidateConfig(t *testing.T) {
	path := "path"
	for _, tc := range []struct {
		name     string
		conf     Config
		expected string
	}{
		{"missing bus", Config{}, `"i2c_bus" is required`},
		{"address too low", Config{I2CBus: "1", I2CAddr: 0x0F}, "i2c_addr 0x0f is outside 0x10-0x78"},
		{"address too high", Config{I2CBus: "1", I2CAddr: 0x79}, "i2c_addr 0x79 is outside 0x10-0x78"},
		{"bad range", Config{I2CBus: "1", Range: "far"}, "invalid range mode far"},
		{"bad unit", Config{I2CBus: "1", Unit: "inch"}, "invalid distance unit inch"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			deps, err := tc.conf.Validate(path)
			test.That(t, deps, test.ShouldBeNil)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.expected)
		})
	}

	conf := Config{I2CBus: "1", I2CAddr: 0x11, Range: "medium", Unit: "cm"}
	deps, err := conf.Validate(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"1"})
	test.That(t, conf.Address(), test.ShouldEqual, byte(0x11))

	test.That(t, (&Config{I2CBus: "1"}).Address(), test.ShouldEqual, DefaultAddress)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "tfmini.json")
	test.That(t, os.WriteFile(good, []byte(`{"i2c_bus": "1", "i2c_addr": 17, "range": "short"}`), 0o600), test.ShouldBeNil)
	conf, err := ReadConfig(good)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &Config{I2CBus: "1", I2CAddr: 17, Range: "short"})

	bad := filepath.Join(dir, "bad.json")
	test.That(t, os.WriteFile(bad, []byte(`{"i2c_bus": `), 0o600), test.ShouldBeNil)
	_, err = ReadConfig(bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse")

	_, err = ReadConfig(filepath.Join(dir, "missing.json"))
	test.That(t, errors.Is(err, os.ErrNotExist), test.ShouldBeTrue)
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("applies range then unit", func(t *testing.T) {
		bus := newFakeBus()
		sleeper := newSleepRecorder()
		conf := &Config{I2CBus: "1", I2CAddr: 0x12, Range: "short", Unit: "mm"}
		d, err := NewFromConfig(ctx, bus.i2c(), conf, logging.NewTestLogger(t), WithClock(sleeper))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.Address(), test.ShouldEqual, byte(0x12))
		test.That(t, d.BusName(), test.ShouldEqual, "1")
		test.That(t, bus.registerWrites(), test.ShouldResemble, []RegisterWrite{
			{RegisterDetectionPattern, 0x01},
			{RegisterDetectionRange, 0x00},
			{RegisterDistanceUnit, 0x00},
		})
		test.That(t, sleeper.recorded(), test.ShouldHaveLength, 3)
	})

	t.Run("default address is logged", func(t *testing.T) {
		bus := newFakeBus()
		logger, logs := logging.NewObservedTestLogger(t)
		d, err := NewFromConfig(ctx, bus.i2c(), &Config{I2CBus: "1"}, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.Address(), test.ShouldEqual, DefaultAddress)
		test.That(t, bus.opens, test.ShouldEqual, 0)
		test.That(t, logs.FilterMessageSnippet("default i2c address").Len(), test.ShouldEqual, 1)
	})

	t.Run("invalid config does no bus I/O", func(t *testing.T) {
		bus := newFakeBus()
		_, err := NewFromConfig(ctx, bus.i2c(), &Config{I2CBus: "1", Unit: "inch"}, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, bus.opens, test.ShouldEqual, 0)
	})

	t.Run("bus failure while configuring", func(t *testing.T) {
		bus := newFakeBus()
		bus.failWrite = func(int, byte, []byte) error { return errors.New("no ack") }
		_, err := NewFromConfig(ctx, bus.i2c(), &Config{I2CBus: "1", Unit: "cm"}, logging.NewTestLogger(t), WithClock(newSleepRecorder()))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "tfmini init: failed to set unit")
		test.That(t, IsTransportError(err), test.ShouldBeTrue)
	})
}
