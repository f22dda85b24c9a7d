// Package readout renders clock and sensor snapshots into the fixed-width text the display shows. Every function
// either returns a fresh string or appends to a buffer the caller owns, so results never alias each other.
package readout

import (
	"math"
	"strconv"

	"github.com/ajanata/deskclock/civil"
)

// Time renders HH:MM:SS, zero padded.
func Time(dt civil.DateTime) string {
	var buf [8]byte
	return string(AppendTime(buf[:0], dt))
}

// Date renders DD/MM/YY, zero padded.
func Date(dt civil.DateTime) string {
	var buf [8]byte
	return string(AppendDate(buf[:0], dt))
}

// Meridiem renders AM or PM for a 12-hour reading and nothing for a 24-hour one.
func Meridiem(dt civil.DateTime, h civil.HourFormat) string {
	if h != civil.Hour12 {
		return ""
	}
	return dt.Meridiem.String()
}

// Temperature renders a sign, the integer part and exactly four fractional digits. The fraction is truncated, never
// rounded up: 23.49999 and 23.4999996 render as 23.4999. A value within 1e-10 of a ten-thousandth is taken as that
// ten-thousandth, so a decimal such as 25.08 that float64 stores slightly low still renders 25.0800.
func Temperature(c float64) string {
	var buf [16]byte
	return string(AppendTemperature(buf[:0], c))
}

// snapEpsilon is the distance, in ten-thousandths, under which a value counts as exact.
const snapEpsilon = 1e-6

func AppendTime(dst []byte, dt civil.DateTime) []byte {
	return appendTriple(dst, dt.Hour, dt.Minute, dt.Second, ':')
}

func AppendDate(dst []byte, dt civil.DateTime) []byte {
	return appendTriple(dst, dt.Day, dt.Month, dt.Year, '/')
}

func AppendTemperature(dst []byte, c float64) []byte {
	if c < 0 {
		dst = append(dst, '-')
		c = -c
	}
	scaled := c * 1e4
	n := math.Round(scaled)
	// only binary representation error is snapped up: 25.08 is stored as 25.0799999...
	if math.Abs(scaled-n) > snapEpsilon {
		n = math.Floor(scaled)
	}
	units := uint64(n)
	whole := units / 1e4
	frac := units % 1e4

	dst = strconv.AppendUint(dst, whole, 10)
	dst = append(dst, '.')
	for div := uint64(1000); div > 0; div /= 10 {
		dst = append(dst, byte('0'+frac/div%10))
	}
	return dst
}

func appendTriple(dst []byte, a, b, c uint8, sep byte) []byte {
	dst = appendTwoDigits(dst, a)
	dst = append(dst, sep)
	dst = appendTwoDigits(dst, b)
	dst = append(dst, sep)
	return appendTwoDigits(dst, c)
}

// appendTwoDigits keeps the field two characters wide; values above 99 wrap like the two digit year does.
func appendTwoDigits(dst []byte, n uint8) []byte {
	n %= 100
	return append(dst, '0'+n/10, '0'+n%10)
}
