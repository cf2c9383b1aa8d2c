package tfmini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/tfmini/components/board/genericlinux/buses"
	"go.viam.com/tfmini/logging"
)

// Config describes one sensor.
type Config struct {
	I2CBus  string `json:"i2c_bus"`
	I2CAddr int    `json:"i2c_addr,omitempty"`
	// Range and Unit are applied when the device is created, if set.
	Range string `json:"range,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if conf.I2CBus == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "i2c_bus")
	}
	if conf.I2CAddr != 0 && (conf.I2CAddr < int(MinAddress) || conf.I2CAddr > int(MaxAddress)) {
		return nil, utils.NewConfigValidationError(path,
			errors.Errorf("i2c_addr 0x%02x is outside 0x%02x-0x%02x", conf.I2CAddr, MinAddress, MaxAddress))
	}
	if conf.Range != "" {
		if _, err := ParseRangeMode(conf.Range); err != nil {
			return nil, utils.NewConfigValidationError(path, err)
		}
	}
	if conf.Unit != "" {
		if _, err := ParseUnitMode(conf.Unit); err != nil {
			return nil, utils.NewConfigValidationError(path, err)
		}
	}
	return []string{conf.I2CBus}, nil
}

// Address returns the configured address or the factory default.
func (conf *Config) Address() byte {
	if conf.I2CAddr == 0 {
		return DefaultAddress
	}
	return byte(conf.I2CAddr)
}

// ReadConfig loads a JSON config file.
func ReadConfig(filename string) (*Config, error) {
	//nolint:gosec
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := json.Unmarshal(raw, &conf); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", filename)
	}
	return &conf, nil
}

// NewFromConfig validates conf, creates a Device on bus and applies the configured range and unit.
func NewFromConfig(
	ctx context.Context,
	bus buses.I2C,
	conf *Config,
	logger logging.Logger,
	opts ...Option,
) (*Device, error) {
	if _, err := conf.Validate("tfmini"); err != nil {
		return nil, err
	}
	if conf.I2CAddr == 0 {
		logger.Warnw("using default i2c address", "addr", fmt.Sprintf("0x%02x", DefaultAddress))
	}

	d := NewDevice(bus, conf.I2CBus, conf.Address(), logger, opts...)
	if conf.Range != "" {
		mode, err := ParseRangeMode(conf.Range)
		if err != nil {
			return nil, err
		}
		if err := d.SetRange(ctx, mode); err != nil {
			return nil, errors.Wrap(err, "tfmini init: failed to set range")
		}
	}
	if conf.Unit != "" {
		unit, err := ParseUnitMode(conf.Unit)
		if err != nil {
			return nil, err
		}
		if err := d.SetUnit(ctx, unit); err != nil {
			return nil, errors.Wrap(err, "tfmini init: failed to set unit")
		}
	}
	return d, nil
}
