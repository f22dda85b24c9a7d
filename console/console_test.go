package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/goleak"

	"github.com/ajanata/deskclock/bmp280"
	"github.com/ajanata/deskclock/civil"
	"github.com/ajanata/deskclock/tester"
	"github.com/ajanata/deskclock/wallclock"
)

type fakeBase struct{ dt civil.DateTime }

func (f *fakeBase) Configure(civil.HourFormat) error { return nil }

func (f *fakeBase) SetDateTime(dt civil.DateTime) error {
	f.dt = dt
	return nil
}

func (f *fakeBase) DateTime() (civil.DateTime, error) { return f.dt, nil }

func newConsole(c *qt.C) (*Console, *tester.I2CDevice) {
	bus := tester.NewI2CBus()
	dev := bus.AddDevice(bmp280.Address)
	dev.Registers[bmp280.RegChipID] = bmp280.ChipID
	dev.Registers[bmp280.RegDigT1], dev.Registers[bmp280.RegDigT1+1] = 0x70, 0x6B
	dev.Registers[bmp280.RegDigT2], dev.Registers[bmp280.RegDigT2+1] = 0x43, 0x67
	dev.Registers[bmp280.RegDigT3], dev.Registers[bmp280.RegDigT3+1] = 0x18, 0xFC
	dev.Registers[bmp280.RegTempData] = 0x7E
	dev.Registers[bmp280.RegTempData+1] = 0xED

	sensor := bmp280.New(bus)
	c.Assert(sensor.Configure(bmp280.Config{}), qt.IsNil)
	c.Assert(sensor.ApplySettings(bmp280.DefaultSettings), qt.IsNil)

	clk := wallclock.New(&fakeBase{})
	c.Assert(clk.Init(civil.Hour24), qt.IsNil)
	dt := civil.DateTime{Hour: 18, Minute: 24, Second: 0, Weekday: civil.Sunday, Day: 11, Month: 9, Year: 22}
	c.Assert(clk.SetDateTime(&dt, wallclock.FormatBinary, civil.Hour24), qt.IsNil)

	return New(clk, sensor), dev
}

func TestExec(t *testing.T) {
	c := qt.New(t)
	con, _ := newConsole(c)

	tests := []struct {
		line string
		want string
	}{
		{"time", "18:24:00"},
		{"  DATE ", "11/09/22"},
		{"day", "Sunday"},
		{"temp", "25.0800 C"},
		{"settings", "standby=1000ms filter=off oversampling=x1 mode=normal"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := con.Exec(tt.line)
		c.Assert(err, qt.IsNil, qt.Commentf("%q", tt.line))
		c.Assert(got, qt.Equals, tt.want, qt.Commentf("%q", tt.line))
	}
}

func TestExecErrors(t *testing.T) {
	c := qt.New(t)
	con, _ := newConsole(c)

	_, err := con.Exec("reboot")
	c.Assert(err, qt.ErrorIs, ErrUnknownCommand)

	_, err = con.Exec("time now")
	c.Assert(err, qt.ErrorMatches, `unexpected arguments .*`)

	_, err = con.Exec(`settings "mode`)
	c.Assert(err, qt.ErrorMatches, `console: .*`)

	_, err = con.Exec("settings mode")
	c.Assert(err, qt.ErrorMatches, `usage: .*`)

	_, err = con.Exec("settings mode turbo")
	c.Assert(err, qt.ErrorMatches, `invalid value "turbo"`)

	_, err = con.Exec("settings gain x2")
	c.Assert(err, qt.ErrorMatches, `unknown setting "gain"`)
}

func TestSettingsChange(t *testing.T) {
	c := qt.New(t)
	con, _ := newConsole(c)

	got, err := con.Exec("settings filter x16")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "standby=1000ms filter=x16 oversampling=x1 mode=normal")

	got, err = con.Exec(`settings standby "62.5ms"`)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "standby=62.5ms filter=x16 oversampling=x1 mode=normal")

	got, err = con.Exec("settings MODE Sleep")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "standby=62.5ms filter=x16 oversampling=x1 mode=sleep")

	got, err = con.Exec("settings")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "standby=62.5ms filter=x16 oversampling=x1 mode=sleep")
}

func TestHelp(t *testing.T) {
	c := qt.New(t)
	con, _ := newConsole(c)

	got, err := con.Exec("help")
	c.Assert(err, qt.IsNil)
	lines := strings.Split(got, "\r\n")
	c.Assert(lines, qt.HasLen, 6)
	c.Assert(lines[0], qt.Matches, `date +current date .*`)
	c.Assert(lines[5], qt.Matches, `time +current time`)
}

// idleReader hands out its lines with empty reads in between, like a serial port whose read timeout keeps expiring.
type idleReader struct {
	chunks []string
	idle   bool
}

func (r *idleReader) Read(b []byte) (int, error) {
	r.idle = !r.idle
	if r.idle {
		return 0, nil
	}
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(b, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestServe(t *testing.T) {
	c := qt.New(t)
	con, _ := newConsole(c)

	var out bytes.Buffer
	in := &idleReader{chunks: []string{"ti", "me\r\n", "\r\n", "bogus\n", "day\n"}}
	c.Assert(con.Serve(context.Background(), in, &out), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "18:24:00\r\n"+
		"error: console: unknown command: \"bogus\"\r\n"+
		"Sunday\r\n")
}

type silentReader struct{}

func (silentReader) Read([]byte) (int, error) {
	time.Sleep(time.Millisecond)
	return 0, nil
}

func TestServeCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := qt.New(t)
	con, _ := newConsole(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- con.Serve(ctx, silentReader{}, io.Discard) }()
	cancel()
	c.Assert(<-done, qt.IsNil)
}
