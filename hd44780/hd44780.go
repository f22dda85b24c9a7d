// Package hd44780 drives an HD44780 compatible 4x20 character LCD in 4-bit mode through a PCF8574 I2C backpack.
//
// Backpack wiring: P0 RS, P1 RW, P2 EN, P3 backlight, P4-P7 D4-D7. Every nibble is clocked in by a high then low
// pulse on EN, both latched in a single bus transaction.
//
// Datasheet: https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"fmt"
	"time"

	"github.com/ajanata/deskclock/display"
)

// Expander is the GPIO expander the LCD hangs off.
type Expander interface {
	Stream(states ...uint8) error
}

type Config struct {
	// Backlight turns the backlight pin on.
	Backlight bool
	// Delay waits out the controller's execution times. Defaults to time.Sleep.
	Delay func(time.Duration)
}

type Device struct {
	exp       Expander
	backlight uint8
	delay     func(time.Duration)
}

func New(exp Expander) *Device {
	return &Device{exp: exp, delay: time.Sleep}
}

// Configure runs the 4-bit initialization sequence and leaves the display cleared with the cursor on and the address
// incrementing.
func (d *Device) Configure(c Config) error {
	if c.Delay != nil {
		d.delay = c.Delay
	}
	d.backlight = 0
	if c.Backlight {
		d.backlight = pinBacklight
	}

	d.delay(40 * time.Millisecond)
	// three times 8-bit function set, then switch to 4-bit
	for _, wait := range []time.Duration{5 * time.Millisecond, 100 * time.Microsecond, 100 * time.Microsecond} {
		if err := d.nibble(0x03, false); err != nil {
			return err
		}
		d.delay(wait)
	}
	if err := d.nibble(0x02, false); err != nil {
		return err
	}

	for _, cmd := range []uint8{CmdFunction4Bit2Line, CmdDisplayOnCursorOn} {
		if err := d.Command(cmd); err != nil {
			return err
		}
	}
	if err := d.Clear(); err != nil {
		return err
	}
	return d.Command(CmdEntryIncrement)
}

// Command sends an instruction byte, high nibble first.
func (d *Device) Command(cmd uint8) error {
	return d.send(cmd, false)
}

// Data sends a character code to the current address.
func (d *Device) Data(b uint8) error {
	return d.send(b, true)
}

func (d *Device) Clear() error {
	if err := d.Command(CmdClear); err != nil {
		return err
	}
	d.delay(2 * time.Millisecond)
	return nil
}

func (d *Device) Home() error {
	if err := d.Command(CmdHome); err != nil {
		return err
	}
	d.delay(2 * time.Millisecond)
	return nil
}

// SetCursor moves to a 1-based row and column.
func (d *Device) SetCursor(row, col uint8) error {
	if err := display.CheckCursor(row, col); err != nil {
		return err
	}
	return d.Command(CmdSetDDRAM | (rowOffsets[row-1] + col - 1))
}

// Print writes s byte by byte. Characters outside the controller's ROM show whatever glyph the code maps to.
func (d *Device) Print(s string) error {
	for i := 0; i < len(s); i++ {
		if err := d.Data(s[i]); err != nil {
			return fmt.Errorf("hd44780: print %q: %w", s, err)
		}
	}
	return nil
}

func (d *Device) ShowCursor(on bool) error {
	if on {
		return d.Command(CmdDisplayOnCursorOn)
	}
	return d.Command(CmdDisplayOnCursorOff)
}

func (d *Device) send(b uint8, data bool) error {
	if err := d.nibble(b>>4, data); err != nil {
		return err
	}
	return d.nibble(b&0x0F, data)
}

func (d *Device) nibble(n uint8, data bool) error {
	state := n<<4 | d.backlight
	if data {
		state |= pinRS
	}
	return d.exp.Stream(state|pinEN, state)
}
