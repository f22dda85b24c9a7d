// Package civil holds the broken-down date and time the wall clock stores and the display shows.
package civil

import (
	"fmt"
	"time"

	"github.com/ajanata/deskclock"
)

// Century is added to the two digit year. Clock chips only store the year within the century.
const Century = 2000

// HourFormat selects between 24-hour and 12-hour (AM/PM) time keeping.
type HourFormat uint8

const (
	Hour24 HourFormat = iota
	Hour12
)

func (h HourFormat) String() string {
	switch h {
	case Hour24:
		return "24h"
	case Hour12:
		return "12h"
	}
	return fmt.Sprintf("HourFormat(%d)", uint8(h))
}

// Meridiem is only meaningful in 12-hour mode.
type Meridiem uint8

const (
	AM Meridiem = iota
	PM
)

func (m Meridiem) String() string {
	if m == PM {
		return "PM"
	}
	return "AM"
}

// Weekday counts from 1 (Sunday) to 7 (Saturday): the Sunday-based numbering of package time shifted by one.
type Weekday uint8

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("Weekday(%d)", uint8(w))
	}
	return weekdayNames[w-1]
}

// WeekdayOf converts a time.Weekday (0 = Sunday) into the 1..7 numbering.
func WeekdayOf(w time.Weekday) Weekday {
	return Weekday(w) + 1
}

// DateTime is a wall clock reading. In 24-hour mode Hour runs 0-23 and Meridiem is ignored; in 12-hour mode Hour runs
// 1-12 and Meridiem tells AM from PM.
type DateTime struct {
	Hour     uint8
	Minute   uint8
	Second   uint8
	Meridiem Meridiem
	Weekday  Weekday
	Day      uint8
	Month    uint8
	Year     uint8 // years since Century
}

// FromTime converts t, in its own location, into a 24-hour DateTime.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Hour:    uint8(t.Hour()),
		Minute:  uint8(t.Minute()),
		Second:  uint8(t.Second()),
		Weekday: WeekdayOf(t.Weekday()),
		Day:     uint8(t.Day()),
		Month:   uint8(t.Month()),
		Year:    uint8(t.Year() % 100),
	}
}

// Time interprets a 24-hour DateTime in UTC. 12-hour values are converted first.
func (d DateTime) Time(h HourFormat) time.Time {
	if h == Hour12 {
		d = d.To24h()
	}
	return time.Date(Century+int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), 0, time.UTC)
}

// To12h converts a 24-hour reading into 12-hour form.
func (d DateTime) To12h() DateTime {
	d.Meridiem = AM
	if d.Hour >= 12 {
		d.Meridiem = PM
	}
	d.Hour %= 12
	if d.Hour == 0 {
		d.Hour = 12
	}
	return d
}

// To24h converts a 12-hour reading into 24-hour form.
func (d DateTime) To24h() DateTime {
	h := d.Hour % 12
	if d.Meridiem == PM {
		h += 12
	}
	d.Hour = h
	d.Meridiem = AM
	return d
}

// Convert moves d from one hour format to another.
func (d DateTime) Convert(from, to HourFormat) DateTime {
	if from == to {
		return d
	}
	if to == Hour12 {
		return d.To12h()
	}
	return d.To24h()
}

// Validate checks every field against its range for the given hour format. The weekday is range checked only; it is
// not cross checked against the date, matching what clock hardware accepts.
func (d DateTime) Validate(h HourFormat) error {
	switch h {
	case Hour24:
		if d.Hour > 23 {
			return fmt.Errorf("%w: hour %d", deskclock.ErrInvalidArgument, d.Hour)
		}
	case Hour12:
		if d.Hour < 1 || d.Hour > 12 {
			return fmt.Errorf("%w: hour %d in 12-hour mode", deskclock.ErrInvalidArgument, d.Hour)
		}
		if d.Meridiem != AM && d.Meridiem != PM {
			return fmt.Errorf("%w: meridiem %d", deskclock.ErrInvalidArgument, d.Meridiem)
		}
	default:
		return fmt.Errorf("%w: hour format %d", deskclock.ErrInvalidArgument, h)
	}
	if d.Minute > 59 {
		return fmt.Errorf("%w: minute %d", deskclock.ErrInvalidArgument, d.Minute)
	}
	if d.Second > 59 {
		return fmt.Errorf("%w: second %d", deskclock.ErrInvalidArgument, d.Second)
	}
	if d.Weekday < Sunday || d.Weekday > Saturday {
		return fmt.Errorf("%w: weekday %d", deskclock.ErrInvalidArgument, d.Weekday)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", deskclock.ErrInvalidArgument, d.Month)
	}
	if d.Year > 99 {
		return fmt.Errorf("%w: year %d", deskclock.ErrInvalidArgument, d.Year)
	}
	if d.Day < 1 || int(d.Day) > DaysIn(d.Month, d.Year) {
		return fmt.Errorf("%w: day %d of month %d", deskclock.ErrInvalidArgument, d.Day, d.Month)
	}
	return nil
}

// DaysIn returns the length of month in the given two digit year.
func DaysIn(month, year uint8) int {
	// day zero of the next month is the last day of this one
	return time.Date(Century+int(year), time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d DateTime) String() string {
	return fmt.Sprintf("%s %02d/%02d/%02d %02d:%02d:%02d", d.Weekday, d.Day, d.Month, d.Year, d.Hour, d.Minute, d.Second)
}
