// Package pcf8523 implements a driver for the PCF8523 Real-Time Clock (RTC) as a wall clock time base: hour format
// selection and read-write of the broken-down date and time. Alarms, drift correction and timer interrupts are not
// used.
//
// The oscillator keeps counting between reads, on battery if main power drops, so two reads a second apart observe
// the time a second apart without any software involvement.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCF8523.pdf
package pcf8523

import (
	"fmt"

	"github.com/ajanata/deskclock"
	"github.com/ajanata/deskclock/civil"
)

type Device struct {
	bus     deskclock.I2C
	Address uint8
	format  civil.HourFormat
}

func New(i2c deskclock.I2C) *Device {
	return &Device{
		bus:     i2c,
		Address: Address,
	}
}

// LostPower reports whether the oscillator stopped since the time was last set, in which case the stored time is
// meaningless.
func (d *Device) LostPower() (bool, error) {
	buf := [1]byte{}
	err := d.bus.ReadRegister(d.Address, Status, buf[:])
	if err != nil {
		return false, d.transportError("read", Status, err)
	}
	return buf[0]&secondsOscStop != 0, nil
}

// Initialized reports whether power management has been configured, which Configure does on first use.
func (d *Device) Initialized() (bool, error) {
	buf := [1]byte{}
	err := d.bus.ReadRegister(d.Address, Control3, buf[:])
	if err != nil {
		return false, d.transportError("read", Control3, err)
	}
	return buf[0]&control3PowerMgt != control3PowerMgt, nil
}

// Configure selects the hour format, makes sure the clock is running and turns on battery switch-over. It does not
// touch the stored date and time.
func (d *Device) Configure(h civil.HourFormat) error {
	if h != civil.Hour24 && h != civil.Hour12 {
		return fmt.Errorf("pcf8523: %w: hour format %d", deskclock.ErrInvalidArgument, h)
	}

	buf := [1]byte{}
	err := d.bus.ReadRegister(d.Address, Control1, buf[:])
	if err != nil {
		return d.transportError("read", Control1, err)
	}
	// do not change cap_sel or second/alarm/correction interrupts
	buf[0] &= control1Keep
	if h == civil.Hour12 {
		buf[0] |= control1Hour12
	}
	err = d.bus.WriteRegister(d.Address, Control1, buf[:])
	if err != nil {
		return d.transportError("write", Control1, err)
	}
	d.format = h

	// battery switch-over in standard mode, battery interrupts off
	buf[0] = 0
	err = d.bus.WriteRegister(d.Address, Control3, buf[:])
	if err != nil {
		return d.transportError("write", Control3, err)
	}
	return nil
}

// HourFormat returns the format chosen by Configure.
func (d *Device) HourFormat() civil.HourFormat {
	return d.format
}

// SetDateTime stores dt, which must be in the configured hour format. Writing the seconds register also clears the
// oscillator-stopped flag.
func (d *Device) SetDateTime(dt civil.DateTime) error {
	buf := []byte{
		civil.DecToBCD(dt.Second),
		civil.DecToBCD(dt.Minute),
		d.encodeHour(dt),
		civil.DecToBCD(dt.Day),
		// weekday register counts 0-6 from Sunday
		uint8(dt.Weekday) - 1,
		civil.DecToBCD(dt.Month),
		civil.DecToBCD(dt.Year),
	}
	err := d.bus.WriteRegister(d.Address, Time, buf)
	if err != nil {
		return d.transportError("write", Time, err)
	}
	return nil
}

// DateTime reads the current date and time in the configured hour format.
func (d *Device) DateTime() (civil.DateTime, error) {
	buf := [7]byte{}
	err := d.bus.ReadRegister(d.Address, Time, buf[:])
	if err != nil {
		return civil.DateTime{}, d.transportError("read", Time, err)
	}

	dt := civil.DateTime{
		Second:  civil.BCDToDec(buf[0] & 0x7F),
		Minute:  civil.BCDToDec(buf[1] & 0x7F),
		Day:     civil.BCDToDec(buf[3] & 0x3F),
		Weekday: civil.Weekday(buf[4]&0x07) + 1,
		Month:   civil.BCDToDec(buf[5] & 0x1F),
		Year:    civil.BCDToDec(buf[6]),
	}
	d.decodeHour(buf[2], &dt)
	return dt, nil
}

func (d *Device) encodeHour(dt civil.DateTime) uint8 {
	if d.format != civil.Hour12 {
		return civil.DecToBCD(dt.Hour)
	}
	h := civil.DecToBCD(dt.Hour)
	if dt.Meridiem == civil.PM {
		h |= hoursPM
	}
	return h
}

func (d *Device) decodeHour(reg uint8, dt *civil.DateTime) {
	if d.format != civil.Hour12 {
		dt.Hour = civil.BCDToDec(reg & 0x3F)
		return
	}
	dt.Hour = civil.BCDToDec(reg & 0x1F)
	dt.Meridiem = civil.AM
	if reg&hoursPM != 0 {
		dt.Meridiem = civil.PM
	}
}

func (d *Device) transportError(op string, reg uint8, err error) error {
	return &deskclock.TransportError{Device: "pcf8523", Op: op, Reg: reg, Err: err}
}
