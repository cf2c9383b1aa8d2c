package tfmini

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/tfmini/components/sensor"
	rutils "go.viam.com/tfmini/utils"
)

// DoCommand keys.
const (
	cmdKeyReset          = "reset"
	cmdKeyFactoryReset   = "factory_reset"
	cmdKeySetRange       = "set_range"
	cmdKeySetUnit        = "set_unit"
	cmdKeySetAddress     = "set_address"
	cmdKeyConfirmAddress = "confirm_address"
)

// Readings returns one decoded frame.
func (d *Device) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	m, err := d.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"distance":     int(m.Distance),
		"strength":     int(m.Strength),
		"trigger_flag": int(m.TriggerFlag),
		"mode":         int(m.Mode),
	}, nil
}

// DoCommand runs one configuration command and returns its status. Exactly one key is expected:
//
//	{"reset": true}
//	{"factory_reset": true}
//	{"set_range": "short" | "medium" | "long"}
//	{"set_unit": "mm" | "cm"}
//	{"set_address": 17}
//	{"confirm_address": true}
func (d *Device) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	if len(cmd) != 1 {
		return nil, errors.Errorf("expected exactly one command, got %d", len(cmd))
	}

	for key, val := range cmd {
		switch key {
		case cmdKeyReset:
			if err := d.Reset(ctx); err != nil {
				return nil, err
			}
			return map[string]interface{}{"status": "reset"}, nil
		case cmdKeyFactoryReset:
			if err := d.FactoryReset(ctx); err != nil {
				return nil, err
			}
			return map[string]interface{}{"status": "factory_reset"}, nil
		case cmdKeySetRange:
			name, ok := val.(string)
			if !ok {
				return nil, rutils.NewUnexpectedTypeError(name, val)
			}
			mode, err := ParseRangeMode(name)
			if err != nil {
				return nil, err
			}
			if err := d.SetRange(ctx, mode); err != nil {
				return nil, err
			}
			return map[string]interface{}{"range": mode.String()}, nil
		case cmdKeySetUnit:
			name, ok := val.(string)
			if !ok {
				return nil, rutils.NewUnexpectedTypeError(name, val)
			}
			unit, err := ParseUnitMode(name)
			if err != nil {
				return nil, err
			}
			if err := d.SetUnit(ctx, unit); err != nil {
				return nil, err
			}
			return map[string]interface{}{"unit": unit.String()}, nil
		case cmdKeySetAddress:
			addr, err := addressFromValue(val)
			if err != nil {
				return nil, err
			}
			change, err := d.SetAddress(ctx, addr)
			if err != nil {
				return nil, err
			}
			return addressStatus(change), nil
		case cmdKeyConfirmAddress:
			change, ok := d.PendingAddress()
			if !ok {
				return nil, errors.New("no address change is pending")
			}
			if err := d.ConfirmAddressChange(ctx, change); err != nil {
				return nil, err
			}
			change.State = AddressChangeApplied
			return addressStatus(change), nil
		}
	}
	return nil, errors.Wrapf(sensor.ErrUnknownCommand, "%v", cmd)
}

func addressStatus(change PendingAddressChange) map[string]interface{} {
	current := change.Old
	if change.State == AddressChangeApplied {
		current = change.New
	}
	return map[string]interface{}{
		"current_address": int(current),
		"pending_address": int(change.New),
		"state":           change.State.String(),
		"message":         change.String(),
	}
}

func addressFromValue(val interface{}) (byte, error) {
	var addr int
	switch v := val.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, &ValidationError{Field: "address", Value: v, Reason: "must be an integer"}
		}
		addr = int(v)
	case int:
		addr = v
	default:
		return 0, rutils.NewUnexpectedTypeError(addr, val)
	}
	if addr < int(MinAddress) || addr > int(MaxAddress) {
		return 0, &ValidationError{
			Field:  "address",
			Value:  fmt.Sprintf("0x%02x", addr),
			Reason: fmt.Sprintf("must be between 0x%02x and 0x%02x", MinAddress, MaxAddress),
		}
	}
	return byte(addr), nil
}
