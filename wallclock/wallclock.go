// Package wallclock is the authoritative store of the civil date and time. It sits in front of a time base (a
// battery-backed RTC chip or a software oscillator) that keeps counting on its own between reads; the clock only
// validates what goes in and formats what comes out.
package wallclock

import (
	"fmt"

	"github.com/ajanata/deskclock"
	"github.com/ajanata/deskclock/civil"
	"github.com/ajanata/deskclock/readout"
)

// Format tags the encoding of the numeric fields handed to SetDateTime.
type Format uint8

const (
	FormatBinary Format = iota
	FormatBCD
)

// TimeBase is the hardware (or simulated hardware) that keeps time.
type TimeBase interface {
	Configure(h civil.HourFormat) error
	SetDateTime(dt civil.DateTime) error
	DateTime() (civil.DateTime, error)
}

type State uint8

const (
	StateUninitialized State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "uninitialized"
}

type Clock struct {
	tb     TimeBase
	state  State
	format civil.HourFormat
}

func New(tb TimeBase) *Clock {
	return &Clock{tb: tb}
}

// Init configures the time base for the given hour format. It never seeds a date or time; that is the job of the
// boot-time synchronization.
func (c *Clock) Init(h civil.HourFormat) error {
	if err := c.tb.Configure(h); err != nil {
		return fmt.Errorf("wallclock: init: %w", err)
	}
	c.format = h
	c.state = StateRunning
	return nil
}

func (c *Clock) State() State {
	return c.state
}

func (c *Clock) HourFormat() civil.HourFormat {
	return c.format
}

// SetDateTime validates dt, read in hour format from, and writes it to the time base converted to the clock's own
// hour format. Fields are decoded from BCD when f is FormatBCD.
func (c *Clock) SetDateTime(dt *civil.DateTime, f Format, from civil.HourFormat) error {
	if c.state != StateRunning {
		return fmt.Errorf("wallclock: set: %w", deskclock.ErrNotInitialized)
	}
	if dt == nil {
		return fmt.Errorf("wallclock: set: %w: nil date/time", deskclock.ErrInvalidArgument)
	}
	if f != FormatBinary && f != FormatBCD {
		return fmt.Errorf("wallclock: set: %w: format %d", deskclock.ErrInvalidArgument, f)
	}

	v := *dt
	if f == FormatBCD {
		var ok bool
		v, ok = v.FromBCD()
		if !ok {
			return fmt.Errorf("wallclock: set: %w: malformed BCD %+v", deskclock.ErrInvalidArgument, *dt)
		}
	}

	if err := v.Validate(from); err != nil {
		return fmt.Errorf("wallclock: set: %w", err)
	}
	v = v.Convert(from, c.format)

	if err := c.tb.SetDateTime(v); err != nil {
		return fmt.Errorf("wallclock: set: %w", err)
	}
	return nil
}

// DateTime reads the time base. Every call goes to the time base; nothing is cached.
func (c *Clock) DateTime() (civil.DateTime, error) {
	if c.state != StateRunning {
		return civil.DateTime{}, fmt.Errorf("wallclock: get: %w", deskclock.ErrNotInitialized)
	}
	dt, err := c.tb.DateTime()
	if err != nil {
		return civil.DateTime{}, fmt.Errorf("wallclock: get: %w", err)
	}
	return dt, nil
}

// DayName returns the English name of the current weekday.
func (c *Clock) DayName() (string, error) {
	dt, err := c.DateTime()
	if err != nil {
		return "", err
	}
	return dt.Weekday.String(), nil
}

// TimeString returns the current time as HH:MM:SS.
func (c *Clock) TimeString() (string, error) {
	dt, err := c.DateTime()
	if err != nil {
		return "", err
	}
	return readout.Time(dt), nil
}

// DateString returns the current date as DD/MM/YY.
func (c *Clock) DateString() (string, error) {
	dt, err := c.DateTime()
	if err != nil {
		return "", err
	}
	return readout.Date(dt), nil
}
