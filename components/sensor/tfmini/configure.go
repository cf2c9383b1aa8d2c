package tfmini

import (
	"context"
	"fmt"
)

// AddressChangeState says whether a new address is already in use by the device.
type AddressChangeState int

const (
	// AddressChangeApplied means the device already answers at the new address.
	AddressChangeApplied AddressChangeState = iota
	// AddressChangePendingPowerCycle means the device stored the new address but keeps answering
	// at the old one until it is power cycled.
	AddressChangePendingPowerCycle
)

func (s AddressChangeState) String() string {
	switch s {
	case AddressChangeApplied:
		return "applied"
	case AddressChangePendingPowerCycle:
		return "pending_power_cycle"
	}
	return fmt.Sprintf("AddressChangeState(%d)", int(s))
}

// PendingAddressChange is the result of SetAddress.
type PendingAddressChange struct {
	BusName string
	Old     byte
	New     byte
	State   AddressChangeState
}

func (p PendingAddressChange) String() string {
	if p.State == AddressChangeApplied {
		return fmt.Sprintf("tfmini on bus %s already uses address 0x%02x", p.BusName, p.New)
	}
	return fmt.Sprintf("after a power cycle, tfmini 0x%02x on bus %s will be 0x%02x", p.Old, p.BusName, p.New)
}

// SetAddress stores a new slave address in the device. The device keeps answering at the current
// address until it is power cycled, so the handle keeps using the current address too. Once the
// sensor has been cycled, call ConfirmAddressChange with the returned value.
func (d *Device) SetAddress(ctx context.Context, newAddr byte) (PendingAddressChange, error) {
	if newAddr < MinAddress || newAddr > MaxAddress {
		return PendingAddressChange{}, &ValidationError{
			Field:  "address",
			Value:  fmt.Sprintf("0x%02x", newAddr),
			Reason: fmt.Sprintf("must be between 0x%02x and 0x%02x", MinAddress, MaxAddress),
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(ctx, RegisterSlaveAddress, newAddr); err != nil {
		return PendingAddressChange{}, err
	}

	change := PendingAddressChange{BusName: d.busName, Old: d.addr, New: newAddr, State: AddressChangePendingPowerCycle}
	if newAddr == d.addr {
		change.State = AddressChangeApplied
		d.pending = nil
		return change, nil
	}
	d.pending = &change
	d.logger.Infow("address change stored, power cycle the sensor to apply it",
		"bus", d.busName, "old", fmt.Sprintf("0x%02x", d.addr), "new", fmt.Sprintf("0x%02x", newAddr))
	return change, nil
}

// PendingAddress returns the address change waiting for a power cycle, if any.
func (d *Device) PendingAddress() (PendingAddressChange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return PendingAddressChange{}, false
	}
	return *d.pending, true
}

// ConfirmAddressChange is called after the sensor has been power cycled. It switches the handle to
// the new address and reads one frame there to verify the device answers. If it does not, the
// handle goes back to the old address and the read error is returned.
func (d *Device) ConfirmAddressChange(ctx context.Context, change PendingAddressChange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkChange(change); err != nil {
		return err
	}

	d.addr = change.New
	if _, err := d.queryFrame(ctx); err != nil {
		d.addr = change.Old
		return err
	}
	d.pending = nil
	d.logger.Infow("address change confirmed", "bus", d.busName, "addr", fmt.Sprintf("0x%02x", change.New))
	return nil
}

// AcknowledgeAddressChange switches the handle to the new address without talking to the device.
// Use it when the sensor cannot be queried right after the power cycle.
func (d *Device) AcknowledgeAddressChange(change PendingAddressChange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkChange(change); err != nil {
		return err
	}
	d.addr = change.New
	d.pending = nil
	return nil
}

func (d *Device) checkChange(change PendingAddressChange) error {
	if change.Old != d.addr {
		return &ValidationError{
			Field:  "address change",
			Value:  change.String(),
			Reason: fmt.Sprintf("handle is at 0x%02x, not 0x%02x", d.addr, change.Old),
		}
	}
	if change.New < MinAddress || change.New > MaxAddress {
		return &ValidationError{Field: "address", Value: fmt.Sprintf("0x%02x", change.New), Reason: "out of range"}
	}
	return nil
}

// SetRange locks the detection range. Automatic range switching is turned off first, then the
// range is written. If the range write fails the device is left in fixed mode with an unspecified
// range and a ProtocolError is returned. Its Remaining field names the write that did not land;
// the way to finish the job is to call SetRange again, which rewrites both registers.
func (d *Device) SetRange(ctx context.Context, mode RangeMode) error {
	if !mode.IsValid() {
		return &ValidationError{Field: "range mode", Value: fmt.Sprintf("0x%02x", byte(mode)), Reason: "use 0x00, 0x03 or 0x07"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	fixed := RegisterWrite{Register: RegisterDetectionPattern, Value: detectionPatternFixed}
	rangeWrite := RegisterWrite{Register: RegisterDetectionRange, Value: byte(mode)}

	if err := d.writeRegister(ctx, fixed.Register, fixed.Value); err != nil {
		return err
	}
	if err := d.writeRegister(ctx, rangeWrite.Register, rangeWrite.Value); err != nil {
		protoErr := &ProtocolError{
			Op:        "set range " + mode.String(),
			Address:   d.addr,
			Reason:    "fixed detection pattern applied but range write failed",
			Partial:   true,
			Applied:   []RegisterWrite{fixed},
			Remaining: []RegisterWrite{rangeWrite},
			RetrySafe: true,
			Err:       err,
		}
		if onlyCloseFailed(err) {
			// both writes were acknowledged; only releasing the handle went wrong
			protoErr.Reason = "range written but the bus handle failed to close; the device likely uses the new range"
			protoErr.Partial = false
			protoErr.Applied = []RegisterWrite{fixed, rangeWrite}
			protoErr.Remaining = nil
		}
		return protoErr
	}
	return nil
}

// SetUnit sets the unit distances are reported in.
func (d *Device) SetUnit(ctx context.Context, unit UnitMode) error {
	if !unit.IsValid() {
		return &ValidationError{Field: "distance unit", Value: fmt.Sprintf("0x%02x", byte(unit)), Reason: "use 0x00 for mm or 0x01 for cm"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(ctx, RegisterDistanceUnit, byte(unit))
}
