package readout

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"pgregory.net/rapid"

	"github.com/ajanata/deskclock/civil"
)

func TestTime(t *testing.T) {
	c := qt.New(t)

	c.Assert(Time(civil.DateTime{Hour: 6, Minute: 4, Second: 0}), qt.Equals, "06:04:00")
	c.Assert(Time(civil.DateTime{Hour: 23, Minute: 59, Second: 59}), qt.Equals, "23:59:59")
}

func TestDate(t *testing.T) {
	c := qt.New(t)

	c.Assert(Date(civil.DateTime{Day: 1, Month: 9, Year: 22}), qt.Equals, "01/09/22")
	c.Assert(Date(civil.DateTime{Day: 31, Month: 12, Year: 0}), qt.Equals, "31/12/00")
}

func TestMeridiem(t *testing.T) {
	c := qt.New(t)

	dt := civil.DateTime{Hour: 6, Meridiem: civil.PM}
	c.Assert(Meridiem(dt, civil.Hour12), qt.Equals, "PM")
	c.Assert(Meridiem(dt, civil.Hour24), qt.Equals, "")
}

func TestTemperature(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		in   float64
		want string
	}{
		{23.5, "23.5000"},
		{23.49999, "23.4999"},
		{23.4999996, "23.4999"},
		{-23.4999996, "-23.4999"},
		{25.08, "25.0800"},
		{0, "0.0000"},
		{-1, "-1.0000"},
		{-12.345678, "-12.3456"},
		{100.00009, "100.0000"},
		{7.06, "7.0600"},
	}
	for _, tt := range tests {
		c.Assert(Temperature(tt.in), qt.Equals, tt.want, qt.Commentf("%v", tt.in))
	}
}

func TestAppend(t *testing.T) {
	c := qt.New(t)

	buf := []byte("t=")
	buf = AppendTime(buf, civil.DateTime{Hour: 1, Minute: 2, Second: 3})
	buf = append(buf, ' ')
	buf = AppendDate(buf, civil.DateTime{Day: 4, Month: 5, Year: 6})
	buf = append(buf, ' ')
	buf = AppendTemperature(buf, -0.5)
	c.Assert(string(buf), qt.Equals, "t=01:02:03 04/05/06 -0.5000")

	a := Time(civil.DateTime{Hour: 1})
	b := Time(civil.DateTime{Hour: 2})
	c.Assert(a, qt.Equals, "01:00:00")
	c.Assert(b, qt.Equals, "02:00:00")
}

func TestPropertyFixedWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dt := civil.DateTime{
			Hour:   rapid.Uint8Range(0, 23).Draw(t, "hour"),
			Minute: rapid.Uint8Range(0, 59).Draw(t, "minute"),
			Second: rapid.Uint8Range(0, 59).Draw(t, "second"),
			Day:    rapid.Uint8Range(1, 31).Draw(t, "day"),
			Month:  rapid.Uint8Range(1, 12).Draw(t, "month"),
			Year:   rapid.Uint8Range(0, 99).Draw(t, "year"),
		}
		for _, tc := range []struct {
			s   string
			sep byte
		}{{Time(dt), ':'}, {Date(dt), '/'}} {
			if len(tc.s) != 8 {
				t.Fatalf("%q is %d characters", tc.s, len(tc.s))
			}
			if tc.s[2] != tc.sep || tc.s[5] != tc.sep {
				t.Fatalf("%q: separators not at 2 and 5", tc.s)
			}
			for i, r := range tc.s {
				if i == 2 || i == 5 {
					continue
				}
				if r < '0' || r > '9' {
					t.Fatalf("%q: non-digit at %d", tc.s, i)
				}
			}
		}
	})
}

func TestPropertyTemperatureTruncates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// whole ten-thousandths plus a fraction strictly below the next one
		base := rapid.IntRange(-999_999, 999_999).Filter(func(n int) bool { return n != 0 }).Draw(t, "base")
		extra := rapid.IntRange(0, 89).Draw(t, "extra")
		sign := 1
		if base < 0 {
			sign = -1
			base = -base
		}
		v := float64(sign) * (float64(base)/1e4 + float64(extra)/1e6)

		want := Temperature(float64(sign) * float64(base) / 1e4)
		if got := Temperature(v); got != want {
			t.Fatalf("Temperature(%v) = %q, want %q", v, got, want)
		}
	})
}
