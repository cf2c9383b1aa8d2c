package tfmini

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ValidationError is returned when a caller supplied value is outside the legal set. It is always
// raised before any bus I/O, so nothing has been applied to the device.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// TransportError is returned when the underlying bus transaction failed (no acknowledgment,
// timeout, contention). It is never retried by the driver.
type TransportError struct {
	Op      string
	Address byte
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tfmini 0x%02x: %s: bus transaction failed: %v", e.Address, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when the bus transactions succeeded but the result is inconsistent with
// the protocol, e.g. a short frame, or when a multi-step configuration was left half applied. In
// the second case it wraps the TransportError of the failed step, so both IsProtocolError and
// IsTransportError hold; check IsProtocolError first to see the partial state.
type ProtocolError struct {
	Op      string
	Address byte
	Reason  string

	// Partial is set when some, but not all, register writes of a configuration were applied.
	Partial bool
	// Applied lists the register writes that succeeded before the failure.
	Applied []RegisterWrite
	// Remaining lists the register writes that still have to be made.
	Remaining []RegisterWrite
	// RetrySafe is set when calling the same operation again is safe and sufficient to finish it.
	RetrySafe bool

	Err error
}

func (e *ProtocolError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tfmini 0x%02x: %s: %s", e.Address, e.Op, e.Reason)
	if e.Partial {
		fmt.Fprintf(&sb, " (applied %v, remaining %v", e.Applied, e.Remaining)
		if e.RetrySafe {
			sb.WriteString(", retry is safe")
		}
		sb.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTransportError returns true if err is or wraps a TransportError. A partially applied
// configuration is a ProtocolError wrapping a TransportError and matches here too.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}
