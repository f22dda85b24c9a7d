// Package clockapp sequences the clock: bring the devices up, seed the wall clock once, then redraw the display
// every time the refresh ticker fires.
//
// Display layout on the 4x20 panel:
//
//	row 1  HH:MM:SS[AM|PM] DD/MM/YY
//	row 2  day name
//	row 3  temperature, four decimals, "C"
package clockapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ajanata/deskclock/civil"
	"github.com/ajanata/deskclock/display"
	"github.com/ajanata/deskclock/internal/syncutil"
	"github.com/ajanata/deskclock/readout"
	"github.com/ajanata/deskclock/timesync"
	"github.com/ajanata/deskclock/wallclock"
)

// SentinelTemperature is shown when the sensor cannot be read after boot.
const SentinelTemperature = -1.0

// DefaultPollInterval is how often Run checks the refresh flag.
const DefaultPollInterval = 10 * time.Millisecond

type WallClock interface {
	SetDateTime(dt *civil.DateTime, f wallclock.Format, from civil.HourFormat) error
	DateTime() (civil.DateTime, error)
	HourFormat() civil.HourFormat
}

type Sensor interface {
	ReadTemperature() (float64, error)
}

// RefreshFlag is the consumer side of the refresh ticker.
type RefreshFlag interface {
	HasExpired() bool
}

// Reading is what one refresh showed.
type Reading struct {
	DateTime    civil.DateTime
	HourFormat  civil.HourFormat
	Temperature float64
	// SensorOK is false when Temperature is the sentinel.
	SensorOK bool
}

// Publisher receives every reading. Failures are logged and never stop the clock.
type Publisher interface {
	Publish(r Reading) error
}

type step struct {
	name string
	fn   func() error
}

type Option func(*App)

// WithInit adds a device bring-up step to Boot. Steps run in the order they were added, before seeding.
func WithInit(name string, fn func() error) Option {
	return func(a *App) { a.steps = append(a.steps, step{name: name, fn: fn}) }
}

func WithPublisher(p Publisher) Option {
	return func(a *App) { a.pub = p }
}

func WithPollInterval(d time.Duration) Option {
	return func(a *App) { a.poll = d }
}

func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clk = c }
}

type App struct {
	clock  WallClock
	sensor Sensor
	seeder timesync.Seeder
	flag   RefreshFlag
	disp   display.Display
	pub    Publisher
	steps  []step
	poll   time.Duration
	clk    clockwork.Clock

	mu   syncutil.Mutex
	last Reading
}

func New(clock WallClock, sensor Sensor, seeder timesync.Seeder, flag RefreshFlag, disp display.Display, opts ...Option) *App {
	a := &App{
		clock:  clock,
		sensor: sensor,
		seeder: seeder,
		flag:   flag,
		disp:   disp,
		poll:   DefaultPollInterval,
		clk:    clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Boot brings up the devices, seeds the wall clock once and leaves the display blank with the cursor hidden. Any
// error is returned wrapped; the caller decides whether it is fatal.
func (a *App) Boot(ctx context.Context) error {
	for _, s := range a.steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("clockapp: boot: %s: %w", s.name, err)
		}
		log.Debug().Str("step", s.name).Msg("clockapp: device ready")
	}

	if err := a.disp.Clear(); err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}
	if err := a.disp.Home(); err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}

	log.Info().Msg("clockapp: waiting for time")
	dt, err := a.seeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}
	if err := a.clock.SetDateTime(&dt, wallclock.FormatBinary, civil.Hour24); err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}

	now, err := a.clock.DateTime()
	if err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}
	log.Info().
		Str("day", now.Weekday.String()).
		Str("time", readout.Time(now)+readout.Meridiem(now, a.clock.HourFormat())).
		Str("date", readout.Date(now)).
		Msg("clockapp: clock seeded")

	if err := a.disp.Clear(); err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}
	if err := a.disp.Home(); err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}
	if err := a.disp.ShowCursor(false); err != nil {
		return fmt.Errorf("clockapp: boot: %w", err)
	}
	return nil
}

// Refresh reads the clock and the sensor and redraws the display. A sensor failure shows the sentinel; a clock or
// display failure is returned.
func (a *App) Refresh() error {
	dt, err := a.clock.DateTime()
	if err != nil {
		return fmt.Errorf("clockapp: refresh: %w", err)
	}
	format := a.clock.HourFormat()

	r := Reading{DateTime: dt, HourFormat: format, Temperature: SentinelTemperature}
	t, err := a.sensor.ReadTemperature()
	if err != nil {
		log.Warn().Err(err).Msg("clockapp: temperature unavailable")
	} else {
		r.Temperature = t
		r.SensorOK = true
	}

	lines := [...]string{
		readout.Time(dt) + readout.Meridiem(dt, format) + " " + readout.Date(dt),
		dt.Weekday.String(),
		readout.Temperature(r.Temperature) + " C",
	}
	for i, line := range lines {
		if err := a.disp.SetCursor(uint8(i+1), 1); err != nil {
			return fmt.Errorf("clockapp: refresh: %w", err)
		}
		if err := a.disp.Print(pad(line)); err != nil {
			return fmt.Errorf("clockapp: refresh: %w", err)
		}
	}

	a.mu.Lock()
	a.last = r
	a.mu.Unlock()

	if a.pub != nil {
		if err := a.pub.Publish(r); err != nil {
			log.Warn().Err(err).Msg("clockapp: publish failed")
		}
	}
	return nil
}

// Last returns the reading of the latest refresh.
func (a *App) Last() Reading {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Run polls the refresh flag and refreshes once per observed event until ctx is done.
func (a *App) Run(ctx context.Context) error {
	tk := a.clk.NewTicker(a.poll)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.Chan():
			if !a.flag.HasExpired() {
				continue
			}
			if err := a.Refresh(); err != nil {
				return err
			}
		}
	}
}

// pad blanks the rest of the row so a shorter line overwrites a longer one.
func pad(s string) string {
	if len(s) >= display.Columns {
		return s[:display.Columns]
	}
	return s + strings.Repeat(" ", display.Columns-len(s))
}
