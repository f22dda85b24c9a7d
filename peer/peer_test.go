package peer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/jonboulle/clockwork"
	"go.uber.org/goleak"
	"golang.org/x/net/nettest"

	"github.com/ajanata/deskclock/timesync"
)

func response(unix uint32) []byte {
	b := make([]byte, ntpPacketSize)
	b[0] = 0b00100100 // version 4, server
	b[1] = 1
	binary.BigEndian.PutUint32(b[40:], unix+seventyYears)
	return b
}

func TestRequestPacket(t *testing.T) {
	c := qt.New(t)

	b := RequestPacket()
	c.Assert(b, qt.HasLen, 48)
	c.Assert(b[0], qt.Equals, byte(0b11100011))
	c.Assert(b[12:16], qt.DeepEquals, []byte{49, 0x4E, 49, 52})
}

func TestParseResponse(t *testing.T) {
	c := qt.New(t)

	v, err := ParseResponse(response(1_700_000_000))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(1_700_000_000))

	_, err = ParseResponse(make([]byte, 12))
	c.Assert(err, qt.ErrorMatches, "ntp: expected NTP packet size of 48: 12")

	client := response(1_700_000_000)
	client[0] = 0b11100011
	_, err = ParseResponse(client)
	c.Assert(err, qt.ErrorMatches, `ntp: not a server response \(mode 3\)`)

	kod := response(1_700_000_000)
	kod[1] = 0
	_, err = ParseResponse(kod)
	c.Assert(err, qt.ErrorMatches, "ntp: kiss-o'-death from server")

	early := make([]byte, ntpPacketSize)
	early[0], early[1] = 0x24, 1
	_, err = ParseResponse(early)
	c.Assert(err, qt.ErrorMatches, "ntp: transmit timestamp 0 before 1970")
}

func TestNTPClientQuery(t *testing.T) {
	c := qt.New(t)

	pc, err := nettest.NewLocalPacketListener("udp")
	c.Assert(err, qt.IsNil)
	defer pc.Close()

	served := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 512)
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			return
		}
		served <- buf[:n]
		_, _ = pc.WriteTo(response(1_700_000_000), addr)
	}()

	v, err := NewNTPClient(pc.LocalAddr().String()).Query(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(1_700_000_000))
	c.Assert(<-served, qt.DeepEquals, RequestPacket())
}

func TestNTPClientTimeout(t *testing.T) {
	c := qt.New(t)

	pc, err := nettest.NewLocalPacketListener("udp")
	c.Assert(err, qt.IsNil)
	defer pc.Close()

	client := NewNTPClient(pc.LocalAddr().String())
	client.Timeout = 50 * time.Millisecond
	_, err = client.Query(context.Background())
	c.Assert(err, qt.ErrorMatches, "ntp: receive: .*")
}

// clockSource reads the fake clock, so the peer's value is always exact.
type clockSource struct {
	clock   clockwork.Clock
	mu      sync.Mutex
	queries int
	err     error
}

func (s *clockSource) Query(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.err != nil {
		return 0, s.err
	}
	return uint64(s.clock.Now().Unix()), nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	err error
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func TestRefreshAndSend(t *testing.T) {
	c := qt.New(t)

	fc := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	src := &clockSource{clock: fc}
	link := &syncBuffer{}
	p := New(src, link, WithClock(fc))

	// nothing received yet: the frame carries zero
	c.Assert(p.Send(), qt.IsNil)
	c.Assert(p.Current(), qt.Equals, uint64(0))

	c.Assert(p.Refresh(context.Background()), qt.IsNil)
	fc.Advance(3 * time.Second)
	c.Assert(p.Current(), qt.Equals, uint64(1_700_000_003))
	c.Assert(p.Send(), qt.IsNil)

	out := link.Bytes()
	c.Assert(out, qt.HasLen, 2*timesync.FrameSize)
	first, _ := timesync.DecodeFrame(out[:8])
	second, _ := timesync.DecodeFrame(out[8:])
	c.Assert(first, qt.Equals, uint64(0))
	c.Assert(second, qt.Equals, uint64(1_700_000_003))
}

func TestRefreshFailureKeepsValue(t *testing.T) {
	c := qt.New(t)

	fc := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	src := &clockSource{clock: fc}
	p := New(src, &syncBuffer{}, WithClock(fc))
	c.Assert(p.Refresh(context.Background()), qt.IsNil)

	src.err = errors.New("no route to host")
	c.Assert(p.Refresh(context.Background()), qt.ErrorMatches, "peer: query: no route to host")
	c.Assert(p.Current(), qt.Equals, uint64(1_700_000_000))
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := qt.New(t)

	fc := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	src := &clockSource{clock: fc}
	link := &syncBuffer{}
	// one query at start, then the value free-runs on the clock
	p := New(src, link, WithClock(fc), WithQueryInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()
	c.Assert(fc.BlockUntilContext(ctx, 2), qt.IsNil)
	waitFor(c, func() bool { return p.Current() != 0 })

	for i := 0; i < 5; i++ {
		fc.Advance(time.Second)
	}
	waitFor(c, func() bool { return len(link.Bytes()) == timesync.FrameSize })

	v, err := timesync.DecodeFrame(link.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(1_700_000_005))
	c.Assert(timesync.DefaultWindow.Contains(v), qt.IsTrue)

	cancel()
	c.Assert(<-errc, qt.IsNil)
}

func TestRunLinkFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := qt.New(t)

	fc := clockwork.NewFakeClock()
	boom := errors.New("port closed")
	p := New(&clockSource{clock: fc}, &syncBuffer{err: boom}, WithClock(fc), WithSendInterval(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()
	c.Assert(fc.BlockUntilContext(ctx, 2), qt.IsNil)
	fc.Advance(time.Second)

	select {
	case err := <-errc:
		c.Assert(err, qt.ErrorIs, boom)
	case <-time.After(2 * time.Second):
		c.Fatal("Run did not return")
	}
}

func waitFor(c *qt.C, cond func() bool) {
	c.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			c.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}
