// Package cli contains the tfmini command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagBus     = "bus"
	generalFlagAddress = "address"
	generalFlagConfig  = "config"
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"
	generalFlagFake    = "fake"

	addressFlagNoVerify = "no-verify"
)

var app = &cli.App{
	Name:            "tfmini",
	Usage:           "talk to a TFmini distance sensor over I2C",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagBus,
			Aliases: []string{"b"},
			Usage:   "i2c bus the sensor is on, e.g. 1 or /dev/i2c-1",
		},
		&cli.IntFlag{
			Name:    generalFlagAddress,
			Aliases: []string{"a"},
			Usage:   "i2c address of the sensor; accepts hex like 0x10 (defaults to 0x10)",
		},
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load sensor configuration from `FILE`; --bus and --address override it",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.BoolFlag{
			Name:   generalFlagFake,
			Hidden: true,
			Usage:  "talk to a simulated sensor instead of the bus",
		},
		&cli.StringFlag{
			Name:  generalFlagLogFile,
			Usage: "also write logs to `FILE`, rotating it as it grows",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "distance",
			Usage:  "print the measured distance in the configured unit",
			Action: DistanceAction,
		},
		{
			Name:   "read",
			Usage:  "print a full frame: distance, strength, trigger flag and mode",
			Action: ReadAction,
		},
		{
			Name:   "reset",
			Usage:  "reboot the sensor",
			Action: ResetAction,
		},
		{
			Name:   "factory-reset",
			Usage:  "restore factory settings; the address is kept",
			Action: FactoryResetAction,
		},
		{
			Name:      "set-range",
			Usage:     "lock the detection range",
			ArgsUsage: "<short|medium|long>",
			Action:    SetRangeAction,
		},
		{
			Name:      "set-unit",
			Usage:     "set the unit distances are reported in",
			ArgsUsage: "<mm|cm>",
			Action:    SetUnitAction,
		},
		{
			Name:      "set-address",
			Usage:     "store a new i2c address; it is used after the sensor is power cycled",
			ArgsUsage: "<new-address>",
			Action:    SetAddressAction,
		},
		{
			Name:      "confirm-address",
			Usage:     "after a power cycle, check that the sensor at --address answers at its new address",
			ArgsUsage: "<new-address>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  addressFlagNoVerify,
					Usage: "do not query the sensor at the new address",
				},
			},
			Action: ConfirmAddressAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
