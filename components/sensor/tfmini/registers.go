package tfmini

import (
	"fmt"
	"strings"
)

// Register is a configuration register of the TFmini. Registers are addressed with two bytes and
// every register in this protocol is one byte long.
type Register uint16

// Register map. Values are fixed by the vendor.
const (
	// RegisterSlaveAddress holds the I2C address, 0x10 - 0x78. Takes effect after a power cycle.
	RegisterSlaveAddress Register = 0x0026
	// RegisterTriggerMode selects internal (0x00, default) or external triggering.
	RegisterTriggerMode Register = 0x0027
	// RegisterDetectionRange selects the fixed range: 0x00 short, 0x03 medium, 0x07 long.
	RegisterDetectionRange Register = 0x0050
	// RegisterDetectionPattern is 0x00 for automatic range switching, 0x01 for a fixed range.
	RegisterDetectionPattern Register = 0x0051
	// RegisterDistanceUnit is 0x00 for millimeters, 0x01 for centimeters (default).
	RegisterDistanceUnit Register = 0x0066
	// RegisterFactoryReset restores defaults when written with 0x02. Address and trigger mode survive.
	RegisterFactoryReset Register = 0x0070
)

const registerLength = 0x01

// Bytes returns the register selector as it goes on the wire: high address byte, low address
// byte, length.
func (r Register) Bytes() []byte {
	return []byte{byte(r >> 8), byte(r), registerLength}
}

func (r Register) String() string {
	var name string
	switch r {
	case RegisterSlaveAddress:
		name = "slave_address"
	case RegisterTriggerMode:
		name = "trigger_mode"
	case RegisterDetectionRange:
		name = "detection_range"
	case RegisterDetectionPattern:
		name = "detection_pattern"
	case RegisterDistanceUnit:
		name = "distance_unit"
	case RegisterFactoryReset:
		name = "factory_reset"
	default:
		name = "unknown"
	}
	return fmt.Sprintf("%s(0x%04x)", name, uint16(r))
}

// RegisterWrite is a single register assignment.
type RegisterWrite struct {
	Register Register
	Value    byte
}

func (w RegisterWrite) String() string {
	return fmt.Sprintf("%v=0x%02x", w.Register, w.Value)
}

// Values written to registers by the configuration flows.
const (
	detectionPatternFixed byte = 0x01
	factoryResetValue     byte = 0x02
)

// Valid range of slave addresses accepted by the device.
const (
	MinAddress byte = 0x10
	MaxAddress byte = 0x78
	// DefaultAddress is the factory address.
	DefaultAddress byte = 0x10
)

// RangeMode is the fixed detection range. The value is the byte written to the device.
type RangeMode byte

// The detection ranges the device supports.
const (
	RangeShort  RangeMode = 0x00 // 0.3 - 2 m
	RangeMedium RangeMode = 0x03 // 0.5 - 5 m
	RangeLong   RangeMode = 0x07 // 1 - 12 m
)

// IsValid reports whether the mode is one the device accepts.
func (m RangeMode) IsValid() bool {
	switch m {
	case RangeShort, RangeMedium, RangeLong:
		return true
	}
	return false
}

func (m RangeMode) String() string {
	switch m {
	case RangeShort:
		return "short"
	case RangeMedium:
		return "medium"
	case RangeLong:
		return "long"
	}
	return fmt.Sprintf("RangeMode(0x%02x)", byte(m))
}

// RangeModeFromByte converts a wire byte back to a RangeMode.
func RangeModeFromByte(b byte) (RangeMode, error) {
	m := RangeMode(b)
	if !m.IsValid() {
		return 0, &ValidationError{Field: "range mode", Value: fmt.Sprintf("0x%02x", b), Reason: "use 0x00, 0x03 or 0x07"}
	}
	return m, nil
}

// ParseRangeMode parses "short", "medium" or "long".
func ParseRangeMode(s string) (RangeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return RangeShort, nil
	case "medium", "middle":
		return RangeMedium, nil
	case "long":
		return RangeLong, nil
	}
	return 0, &ValidationError{Field: "range mode", Value: s, Reason: "use short, medium or long"}
}

// UnitMode is the distance unit the device reports in. The value is the byte written to the device.
type UnitMode byte

// The distance units the device supports.
const (
	Millimeters UnitMode = 0x00
	Centimeters UnitMode = 0x01
)

// IsValid reports whether the unit is one the device accepts.
func (u UnitMode) IsValid() bool {
	return u == Millimeters || u == Centimeters
}

func (u UnitMode) String() string {
	switch u {
	case Millimeters:
		return "mm"
	case Centimeters:
		return "cm"
	}
	return fmt.Sprintf("UnitMode(0x%02x)", byte(u))
}

// ParseUnitMode parses "mm" or "cm".
func ParseUnitMode(s string) (UnitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mm", "millimeters":
		return Millimeters, nil
	case "cm", "centimeters":
		return Centimeters, nil
	}
	return 0, &ValidationError{Field: "distance unit", Value: s, Reason: "use mm or cm"}
}
