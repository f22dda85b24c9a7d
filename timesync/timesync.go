// Package timesync seeds the wall clock once at boot from the epoch frames a network-time peer sends over a serial
// link, or from a fixed date and time when there is no peer.
//
// Frames that fall outside the sanity window are dropped and the receive repeats. By default there is no retry limit
// and no timeout: the clock has nothing useful to show until it knows the time. WithDeadline bounds the wait, and
// WithFallback turns an expired deadline into a manual seed instead of an error.
package timesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ajanata/deskclock"
	"github.com/ajanata/deskclock/civil"
	"github.com/ajanata/deskclock/internal/syncutil"
)

// ErrDeadline is returned by Acquire when no acceptable frame arrived in time.
var ErrDeadline = errors.New("timesync: no time received before deadline")

// Seeder produces the date and time the wall clock starts from, always in 24-hour form.
type Seeder interface {
	Seed(ctx context.Context) (civil.DateTime, error)
}

type State uint8

const (
	StateWaiting State = iota
	StateSynced
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StateFallback:
		return "fallback"
	}
	return "waiting"
}

type Option func(*Synchronizer)

func WithWindow(w Window) Option {
	return func(s *Synchronizer) { s.window = w }
}

func WithOffset(d time.Duration) Option {
	return func(s *Synchronizer) { s.offset = d }
}

// WithDeadline bounds the total time Acquire waits. Zero means wait forever.
func WithDeadline(d time.Duration) Option {
	return func(s *Synchronizer) { s.deadline = d }
}

// WithFallback makes Seed return dt when the deadline expires.
func WithFallback(dt civil.DateTime) Option {
	return func(s *Synchronizer) { s.fallback = &dt }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Synchronizer) { s.clock = c }
}

// Synchronizer receives epoch frames from a link. The link must return from Read periodically, with zero bytes if
// nothing arrived, so the deadline and the context can be checked; a serial port with a read timeout does.
type Synchronizer struct {
	link     io.Reader
	window   Window
	offset   time.Duration
	deadline time.Duration
	fallback *civil.DateTime
	clock    clockwork.Clock

	mu    syncutil.Mutex
	state State
	last  uint64
}

func New(link io.Reader, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		link:   link,
		window: DefaultWindow,
		offset: DefaultOffset,
		clock:  clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Epoch returns the last accepted epoch value, zero before the first one.
func (s *Synchronizer) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Synchronizer) setState(st State, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	if st == StateSynced {
		s.last = epoch
	}
}

// Acquire blocks until a frame inside the window arrives and returns its value. Frames are assembled across short
// reads; a read that returns nothing is an idle gap on the link and drops whatever part of a frame came before it.
func (s *Synchronizer) Acquire(ctx context.Context) (uint64, error) {
	var frame [FrameSize]byte
	n := 0
	start := s.clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if s.deadline > 0 && s.clock.Since(start) >= s.deadline {
			return 0, ErrDeadline
		}

		got, err := s.link.Read(frame[n:])
		if err != nil {
			return 0, &deskclock.TransportError{Device: "timesync", Op: "read", Err: err}
		}
		if got == 0 {
			if n > 0 {
				log.Debug().Int("bytes", n).Msg("timesync: idle gap, dropping partial frame")
				n = 0
			}
			continue
		}

		n += got
		if n < FrameSize {
			continue
		}
		n = 0

		v, _ := DecodeFrame(frame[:])
		if !s.window.Contains(v) {
			log.Debug().Uint64("epoch", v).Msg("timesync: discarding frame outside window")
			continue
		}
		s.setState(StateSynced, v)
		log.Info().Uint64("epoch", v).Msg("timesync: time received")
		return v, nil
	}
}

// Seed acquires the time and breaks it down with the configured offset. When the deadline expires and a fallback
// is set, the synchronizer moves to StateFallback and returns the fallback instead.
func (s *Synchronizer) Seed(ctx context.Context) (civil.DateTime, error) {
	v, err := s.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrDeadline) && s.fallback != nil {
			s.setState(StateFallback, 0)
			log.Warn().Stringer("fallback", *s.fallback).Msg("timesync: deadline expired, using fallback time")
			return *s.fallback, nil
		}
		return civil.DateTime{}, fmt.Errorf("timesync: seed: %w", err)
	}
	return ToCivil(v, s.offset), nil
}

// Manual seeds a fixed date and time, for clocks built without a network-time peer.
type Manual struct {
	DateTime civil.DateTime
}

func (m Manual) Seed(context.Context) (civil.DateTime, error) {
	return m.DateTime, nil
}
