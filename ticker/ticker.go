// Package ticker flags that a display refresh is due on a fixed period without blocking the code that polls it.
//
// The flag holds a single event. Expiries that happen while it is still raised are coalesced: the poller sees one
// event no matter how many periods went by, which is all a display that shows one state at a time needs.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultPeriod is the refresh period of the deployed clock.
const DefaultPeriod = 5 * time.Second

// Mailbox is a single-slot, lossy event shared by one producer and one consumer.
type Mailbox struct {
	flag atomic.Bool
}

// Raise sets the flag. Raising an already raised flag is a no-op.
func (m *Mailbox) Raise() {
	m.flag.Store(true)
}

// Take reports whether the flag was raised and clears it in the same step.
func (m *Mailbox) Take() bool {
	return m.flag.Swap(false)
}

type Ticker struct {
	clock    clockwork.Clock
	period   time.Duration
	box      Mailbox
	expiries atomic.Uint64
}

// New returns a stopped ticker. A nil clock means the real clock.
func New(period time.Duration, clock clockwork.Clock) *Ticker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ticker{clock: clock, period: period}
}

func (t *Ticker) Period() time.Duration {
	return t.period
}

// Expire is the completion signal of one period. It only raises the flag.
func (t *Ticker) Expire() {
	t.expiries.Add(1)
	t.box.Raise()
}

// HasExpired tests and clears the flag.
func (t *Ticker) HasExpired() bool {
	return t.box.Take()
}

// Expiries counts every period that elapsed, including coalesced ones.
func (t *Ticker) Expiries() uint64 {
	return t.expiries.Load()
}

// Run calls Expire once per period until ctx is done. It reloads automatically; there is nothing to re-arm.
func (t *Ticker) Run(ctx context.Context) error {
	if t.period <= 0 {
		return fmt.Errorf("ticker: invalid period %s", t.period)
	}
	tk := t.clock.NewTicker(t.period)
	defer tk.Stop()

	log.Debug().Dur("period", t.period).Msg("ticker: started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.Chan():
			t.Expire()
		}
	}
}

// Period converts a hardware timer's prescaler and auto-reload register values into the period it fires at, for
// a timer counting at clockHz. Both registers count from zero, so a prescaler of 83 divides by 84.
func Period(clockHz uint64, prescaler, reload uint32) (time.Duration, error) {
	if clockHz == 0 {
		return 0, errors.New("ticker: zero timer clock")
	}
	ticks := (uint64(prescaler) + 1) * (uint64(reload) + 1)
	return time.Duration(ticks * uint64(time.Second) / clockHz), nil
}
