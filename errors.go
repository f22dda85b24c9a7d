package deskclock

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("transport failure")
	// ErrIdentityMismatch is returned when a device answers with an unexpected signature.
	ErrIdentityMismatch = errors.New("device identity mismatch")
	// ErrInvalidArgument is returned for nil records, unknown format tags and out of range fields.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfigMismatch is returned when a device reads back something other than what was written.
	ErrConfigMismatch = errors.New("device rejected configuration")
	// ErrNotInitialized is returned when a device or clock is used before it was configured.
	ErrNotInitialized = errors.New("not initialized")
)

// TransportError reports a failed bus or link transaction.
type TransportError struct {
	Device string
	Op     string
	Reg    uint8
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s 0x%02X: %v", e.Device, e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Fatal reports whether err must stop the boot sequence. Every error of the taxonomy above is fatal during boot;
// a cancelled context is a clean shutdown.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
