// Package peer is the network-time side of the link: it keeps a current epoch value fresh from an NTP server and
// resends it to the clock as an 8-byte frame on a fixed cadence, whether or not the clock is listening.
package peer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ajanata/deskclock/internal/syncutil"
	"github.com/ajanata/deskclock/timesync"
)

const (
	DefaultQueryInterval = time.Second
	DefaultSendInterval  = 5 * time.Second
)

type Option func(*Peer)

func WithClock(c clockwork.Clock) Option {
	return func(p *Peer) { p.clock = c }
}

func WithQueryInterval(d time.Duration) Option {
	return func(p *Peer) { p.query = d }
}

func WithSendInterval(d time.Duration) Option {
	return func(p *Peer) { p.send = d }
}

type Peer struct {
	source Source
	link   io.Writer
	clock  clockwork.Clock
	query  time.Duration
	send   time.Duration

	// guards current and the link
	mu      syncutil.Mutex
	current uint64
	at      time.Time
}

func New(source Source, link io.Writer, opts ...Option) *Peer {
	p := &Peer{
		source: source,
		link:   link,
		clock:  clockwork.NewRealClock(),
		query:  DefaultQueryInterval,
		send:   DefaultSendInterval,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Current returns the latest time, advanced by the time elapsed since it was received. Zero until the first
// successful query.
func (p *Peer) Current() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked()
}

func (p *Peer) currentLocked() uint64 {
	if p.current == 0 {
		return 0
	}
	return p.current + uint64(p.clock.Since(p.at)/time.Second)
}

// Refresh queries the source once. A failed query keeps the previous value.
func (p *Peer) Refresh(ctx context.Context) error {
	v, err := p.source.Query(ctx)
	if err != nil {
		return fmt.Errorf("peer: query: %w", err)
	}
	p.mu.Lock()
	p.current = v
	p.at = p.clock.Now()
	p.mu.Unlock()
	log.Debug().Uint64("epoch", v).Msg("peer: time refreshed")
	return nil
}

// Send writes one frame with the current value. Before the first successful query the frame carries zero, which
// the clock rejects as outside its window.
func (p *Peer) Send() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	frame := timesync.EncodeFrame(p.currentLocked())
	if _, err := p.link.Write(frame[:]); err != nil {
		return fmt.Errorf("peer: send: %w", err)
	}
	return nil
}

// Run queries and sends on their own cadences until ctx is done. Query failures are logged and retried on the next
// interval; a link failure ends Run.
func (p *Peer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tk := p.clock.NewTicker(p.query)
		defer tk.Stop()
		for {
			if err := p.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Warn().Err(err).Msg("peer: time query failed")
			}
			select {
			case <-ctx.Done():
				return nil
			case <-tk.Chan():
			}
		}
	})

	g.Go(func() error {
		tk := p.clock.NewTicker(p.send)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tk.Chan():
				if err := p.Send(); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}
