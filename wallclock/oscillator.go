package wallclock

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ajanata/deskclock"
	"github.com/ajanata/deskclock/civil"
	"github.com/ajanata/deskclock/internal/syncutil"
)

// Oscillator is a software time base for hosts without an RTC chip. It keeps an anchor reading and the instant it
// was taken; every read adds the time elapsed since on the underlying clock, so it advances on its own like the
// hardware does. Like the RTC's weekday counter, the seeded weekday is kept as given and advances at midnight even
// when it disagrees with the date.
type Oscillator struct {
	clock  clockwork.Clock
	format civil.HourFormat
	anchor time.Time
	at     time.Time
	set    bool
	// days the seeded weekday runs ahead of the calendar one
	shift int
	mu     syncutil.Mutex
}

// NewOscillator returns a stopped oscillator. A nil clock means the real clock.
func NewOscillator(clock clockwork.Clock) *Oscillator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Oscillator{clock: clock}
}

func (o *Oscillator) Configure(h civil.HourFormat) error {
	if h != civil.Hour24 && h != civil.Hour12 {
		return fmt.Errorf("oscillator: %w: hour format %d", deskclock.ErrInvalidArgument, h)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.format = h
	return nil
}

func (o *Oscillator) SetDateTime(dt civil.DateTime) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.anchor = dt.Time(o.format)
	o.at = o.clock.Now()
	o.set = true
	o.shift = 0
	if dt.Weekday >= civil.Sunday && dt.Weekday <= civil.Saturday {
		o.shift = (int(dt.Weekday) - int(civil.WeekdayOf(o.anchor.Weekday())) + 7) % 7
	}
	return nil
}

// DateTime returns the anchor advanced by the elapsed time. Before the first SetDateTime it counts from midnight on
// 2000-01-01, the same reset value an RTC chip comes up with.
func (o *Oscillator) DateTime() (civil.DateTime, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.set {
		o.anchor = time.Date(civil.Century, time.January, 1, 0, 0, 0, 0, time.UTC)
		o.at = o.clock.Now()
		o.set = true
	}
	now := o.anchor.Add(o.clock.Since(o.at))
	dt := civil.FromTime(now)
	dt.Weekday = civil.Weekday((int(dt.Weekday)-1+o.shift)%7 + 1)
	if o.format == civil.Hour12 {
		dt = dt.To12h()
	}
	return dt, nil
}
