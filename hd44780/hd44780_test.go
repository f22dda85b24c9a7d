package hd44780

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/deskclock"
	"github.com/ajanata/deskclock/pcf8574"
	"github.com/ajanata/deskclock/tester"
)

type transfer struct {
	Value uint8
	Data  bool
}

func newLCD(c *qt.C, backlight bool) (*Device, *tester.I2CDevice, *[]time.Duration) {
	bus := tester.NewI2CBus()
	fake := bus.AddDevice(pcf8574.BackpackAddress)
	fake.Pointerless = true

	exp := pcf8574.New(bus)
	exp.Configure(pcf8574.Config{Address: pcf8574.BackpackAddress})

	var waits []time.Duration
	d := New(exp)
	c.Assert(d.Configure(Config{
		Backlight: backlight,
		Delay:     func(d time.Duration) { waits = append(waits, d) },
	}), qt.IsNil)
	return d, fake, &waits
}

// decode pairs up the EN pulses into nibbles and the nibbles into bytes. skip drops leading nibbles that are not part of a byte.
func decode(c *qt.C, writes []byte, skip int) []transfer {
	c.Assert(len(writes)%2, qt.Equals, 0)
	var nibbles []uint8
	var rs []bool
	for i := 0; i < len(writes); i += 2 {
		hi, lo := writes[i], writes[i+1]
		c.Assert(hi&pinEN, qt.Equals, uint8(pinEN), qt.Commentf("write %d", i))
		c.Assert(lo&pinEN, qt.Equals, uint8(0), qt.Commentf("write %d", i+1))
		c.Assert(hi&^pinEN, qt.Equals, lo)
		nibbles = append(nibbles, lo>>4)
		rs = append(rs, lo&pinRS != 0)
	}
	nibbles, rs = nibbles[skip:], rs[skip:]
	c.Assert(len(nibbles)%2, qt.Equals, 0)

	var out []transfer
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, transfer{Value: nibbles[i]<<4 | nibbles[i+1], Data: rs[i]})
	}
	return out
}

func TestConfigure(t *testing.T) {
	c := qt.New(t)

	_, fake, waits := newLCD(c, true)

	for _, w := range fake.Writes {
		c.Assert(w&pinBacklight, qt.Equals, uint8(pinBacklight))
	}
	// the four lone init nibbles
	boot := decode(c, fake.Writes[:8], 0)
	c.Assert(boot, qt.DeepEquals, []transfer{{Value: 0x33}, {Value: 0x32}})

	c.Assert(decode(c, fake.Writes[8:], 0), qt.DeepEquals, []transfer{
		{Value: CmdFunction4Bit2Line},
		{Value: CmdDisplayOnCursorOn},
		{Value: CmdClear},
		{Value: CmdEntryIncrement},
	})
	c.Assert((*waits)[0], qt.Equals, 40*time.Millisecond)
	c.Assert((*waits)[len(*waits)-1], qt.Equals, 2*time.Millisecond)
}

func TestSetCursorAndPrint(t *testing.T) {
	c := qt.New(t)

	d, fake, _ := newLCD(c, false)
	fake.Writes = nil

	c.Assert(d.SetCursor(1, 1), qt.IsNil)
	c.Assert(d.SetCursor(2, 1), qt.IsNil)
	c.Assert(d.SetCursor(3, 1), qt.IsNil)
	c.Assert(d.SetCursor(4, 20), qt.IsNil)
	c.Assert(d.Print("Hi"), qt.IsNil)
	c.Assert(d.ShowCursor(false), qt.IsNil)
	c.Assert(d.Home(), qt.IsNil)

	c.Assert(decode(c, fake.Writes, 0), qt.DeepEquals, []transfer{
		{Value: 0x80},
		{Value: 0xC0},
		{Value: 0x94},
		{Value: 0xE7},
		{Value: 'H', Data: true},
		{Value: 'i', Data: true},
		{Value: CmdDisplayOnCursorOff},
		{Value: CmdHome},
	})
	for _, w := range fake.Writes {
		c.Assert(w&pinBacklight, qt.Equals, uint8(0))
	}
}

func TestSetCursorOutOfRange(t *testing.T) {
	c := qt.New(t)

	d, fake, _ := newLCD(c, false)
	fake.Writes = nil

	c.Assert(d.SetCursor(5, 1), qt.ErrorIs, deskclock.ErrInvalidArgument)
	c.Assert(d.SetCursor(1, 21), qt.ErrorIs, deskclock.ErrInvalidArgument)
	c.Assert(fake.Writes, qt.HasLen, 0)
}

func TestTransportError(t *testing.T) {
	c := qt.New(t)

	d, fake, _ := newLCD(c, false)
	fake.FailAfterN(3)
	c.Assert(d.Print("Tuesday"), qt.ErrorIs, deskclock.ErrTransport)
}
