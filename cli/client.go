package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/tfmini/components/board/genericlinux"
	"go.viam.com/tfmini/components/board/genericlinux/buses"
	"go.viam.com/tfmini/components/sensor/fake"
	"go.viam.com/tfmini/components/sensor/tfmini"
	"go.viam.com/tfmini/logging"
)

// bus is an I2C bus that can be released when the command is done.
type bus interface {
	buses.I2C
	Close() error
}

// openBus is replaced in tests.
var openBus = func(name string, logger logging.Logger) (bus, error) {
	b, err := genericlinux.NewI2CBus(name, logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// simulatedBus lets the fake sensor stand in for a bus.
type simulatedBus struct {
	*fake.TFmini
}

func (simulatedBus) Close() error {
	return nil
}

// tfminiClient holds what a single command needs: the device and everything that has to be
// released after it runs.
type tfminiClient struct {
	device  *tfmini.Device
	logger  logging.Logger
	closers []io.Closer
}

func newTFminiClient(c *cli.Context) (*tfminiClient, error) {
	logger, logCloser := newLogger(c)
	client := &tfminiClient{logger: logger}
	if logCloser != nil {
		client.closers = append(client.closers, logCloser)
	}

	conf, err := loadConfig(c)
	if err != nil {
		return nil, multierr.Combine(err, client.close())
	}
	var b bus
	if c.Bool(generalFlagFake) {
		b = simulatedBus{fake.NewTFmini(conf.Address(), logger.Sublogger("sim"))}
	} else {
		b, err = openBus(conf.I2CBus, logger)
	}
	if err != nil {
		return nil, multierr.Combine(err, client.close())
	}
	client.closers = append(client.closers, b)

	client.device, err = tfmini.NewFromConfig(c.Context, b, conf, logger.Sublogger("driver"))
	if err != nil {
		return nil, multierr.Combine(err, client.close())
	}
	return client, nil
}

func newLogger(c *cli.Context) (logging.Logger, io.Closer) {
	logger := logging.New("tfmini", logging.NewWriterAppender(c.App.ErrWriter))

	var closer io.Closer
	if filename := c.String(generalFlagLogFile); filename != "" {
		var appender logging.ConsoleAppender
		appender, closer = logging.NewFileAppender(filename)
		logger.AddAppender(appender)
	}
	return logger, closer
}

// loadConfig reads --config if given and lets --bus and --address override it.
func loadConfig(c *cli.Context) (*tfmini.Config, error) {
	conf := &tfmini.Config{}
	if path := c.String(generalFlagConfig); path != "" {
		var err error
		if conf, err = tfmini.ReadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(generalFlagBus) {
		conf.I2CBus = c.String(generalFlagBus)
	}
	if c.IsSet(generalFlagAddress) {
		conf.I2CAddr = c.Int(generalFlagAddress)
	}
	if _, err := conf.Validate(generalFlagConfig); err != nil {
		return nil, err
	}
	return conf, nil
}

func (client *tfminiClient) close() error {
	var err error
	if client.device != nil {
		err = multierr.Combine(err, client.device.Close(context.Background()))
	}
	for i := len(client.closers) - 1; i >= 0; i-- {
		err = multierr.Combine(err, client.closers[i].Close())
	}
	return err
}

// withClient builds a client from the global flags, runs fn and releases the client. With
// --debug the command's context is put in debug mode, which turns on the register and frame
// traces for this command only.
func withClient(c *cli.Context, fn func(client *tfminiClient, c *cli.Context) error) (err error) {
	if c.Bool(generalFlagDebug) {
		var name string
		if c.Command != nil {
			name = c.Command.Name
		}
		c.Context = logging.EnableDebugMode(c.Context, name)
	}
	client, err := newTFminiClient(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, client.close())
	}()
	return fn(client, c)
}

// DistanceAction prints the measured distance.
func DistanceAction(c *cli.Context) error {
	return withClient(c, (*tfminiClient).distanceAction)
}

func (client *tfminiClient) distanceAction(c *cli.Context) error {
	dist, err := client.device.ReadDistance(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d\n", dist)
	return nil
}

// ReadAction prints a full decoded frame.
func ReadAction(c *cli.Context) error {
	return withClient(c, (*tfminiClient).readAction)
}

func (client *tfminiClient) readAction(c *cli.Context) error {
	m, err := client.device.ReadAll(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "distance=%d strength=%d trigger_flag=%d mode=%d\n",
		m.Distance, m.Strength, m.TriggerFlag, m.Mode)
	return nil
}

// ResetAction reboots the sensor.
func ResetAction(c *cli.Context) error {
	return withClient(c, (*tfminiClient).resetAction)
}

func (client *tfminiClient) resetAction(c *cli.Context) error {
	if err := client.device.Reset(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "reset tfmini 0x%02x\n", client.device.Address())
	return nil
}

// FactoryResetAction restores factory settings.
func FactoryResetAction(c *cli.Context) error {
	return withClient(c, (*tfminiClient).factoryResetAction)
}

func (client *tfminiClient) factoryResetAction(c *cli.Context) error {
	if err := client.device.FactoryReset(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "restored factory settings on tfmini 0x%02x\n", client.device.Address())
	return nil
}

// SetRangeAction locks the detection range.
func SetRangeAction(c *cli.Context) error {
	mode, err := tfmini.ParseRangeMode(c.Args().First())
	if err != nil {
		return err
	}
	return withClient(c, func(client *tfminiClient, c *cli.Context) error {
		return client.setRangeAction(c, mode)
	})
}

func (client *tfminiClient) setRangeAction(c *cli.Context, mode tfmini.RangeMode) error {
	if err := client.device.SetRange(c.Context, mode); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "range set to %s\n", mode)
	return nil
}

// SetUnitAction sets the distance unit.
func SetUnitAction(c *cli.Context) error {
	unit, err := tfmini.ParseUnitMode(c.Args().First())
	if err != nil {
		return err
	}
	return withClient(c, func(client *tfminiClient, c *cli.Context) error {
		return client.setUnitAction(c, unit)
	})
}

func (client *tfminiClient) setUnitAction(c *cli.Context, unit tfmini.UnitMode) error {
	if err := client.device.SetUnit(c.Context, unit); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "unit set to %s\n", unit)
	return nil
}

// SetAddressAction stores a new address in the sensor.
func SetAddressAction(c *cli.Context) error {
	addr, err := parseAddress(c.Args().First())
	if err != nil {
		return err
	}
	return withClient(c, func(client *tfminiClient, c *cli.Context) error {
		return client.setAddressAction(c, addr)
	})
}

func (client *tfminiClient) setAddressAction(c *cli.Context, addr byte) error {
	change, err := client.device.SetAddress(c.Context, addr)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, change.String())
	if change.State == tfmini.AddressChangePendingPowerCycle {
		fmt.Fprintf(c.App.Writer, "power cycle the sensor, then run: tfmini --bus %s --address 0x%02x confirm-address 0x%02x\n",
			change.BusName, change.Old, change.New)
	}
	return nil
}

// ConfirmAddressAction switches from --address to the new address once the sensor has been power
// cycled.
func ConfirmAddressAction(c *cli.Context) error {
	addr, err := parseAddress(c.Args().First())
	if err != nil {
		return err
	}
	return withClient(c, func(client *tfminiClient, c *cli.Context) error {
		return client.confirmAddressAction(c, addr)
	})
}

func (client *tfminiClient) confirmAddressAction(c *cli.Context, addr byte) error {
	change := tfmini.PendingAddressChange{
		BusName: client.device.BusName(),
		Old:     client.device.Address(),
		New:     addr,
		State:   tfmini.AddressChangePendingPowerCycle,
	}
	if c.Bool(addressFlagNoVerify) {
		if err := client.device.AcknowledgeAddressChange(change); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "using tfmini at 0x%02x without checking it\n", addr)
		return nil
	}
	if err := client.device.ConfirmAddressChange(c.Context, change); err != nil {
		return errors.Wrapf(err, "tfmini does not answer at 0x%02x; was it power cycled?", addr)
	}
	fmt.Fprintf(c.App.Writer, "tfmini answers at 0x%02x\n", addr)
	return nil
}

func parseAddress(s string) (byte, error) {
	if s == "" {
		return 0, errors.New("an address argument is required, e.g. 0x11")
	}
	addr, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse address %q", s)
	}
	return byte(addr), nil
}
