package peer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	ntpPacketSize = 48
	// seconds from 1900-01-01 (NTP era 0) to 1970-01-01
	seventyYears = 2208988800
)

// Source yields the current time as seconds since the Unix epoch.
type Source interface {
	Query(ctx context.Context) (uint64, error)
}

// NTPClient is a minimal SNTP client: one request, one response, transmit timestamp only.
type NTPClient struct {
	// Server is host:port.
	Server  string
	Timeout time.Duration
	dialer  net.Dialer
}

func NewNTPClient(server string) *NTPClient {
	return &NTPClient{Server: server, Timeout: 4 * time.Second}
}

func (c *NTPClient) Query(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "udp", c.Server)
	if err != nil {
		return 0, fmt.Errorf("ntp: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(RequestPacket()); err != nil {
		return 0, fmt.Errorf("ntp: send: %w", err)
	}

	b := make([]byte, ntpPacketSize)
	n, err := conn.Read(b)
	if err != nil {
		return 0, fmt.Errorf("ntp: receive: %w", err)
	}
	return ParseResponse(b[:n])
}

// RequestPacket builds a client request.
func RequestPacket() []byte {
	b := make([]byte, ntpPacketSize)
	b[0] = 0b11100011 // LI, Version, Mode
	b[1] = 0          // Stratum, or type of clock
	b[2] = 6          // Polling Interval
	b[3] = 0xEC       // Peer Clock Precision
	// 8 bytes of zero for Root Delay & Root Dispersion
	b[12] = 49
	b[13] = 0x4E
	b[14] = 49
	b[15] = 52
	return b
}

// ParseResponse extracts the transmit timestamp, in Unix seconds, from a server response.
func ParseResponse(b []byte) (uint64, error) {
	if len(b) != ntpPacketSize {
		return 0, fmt.Errorf("ntp: expected NTP packet size of %d: %d", ntpPacketSize, len(b))
	}
	if mode := b[0] & 0x07; mode != 4 {
		return 0, fmt.Errorf("ntp: not a server response (mode %d)", mode)
	}
	if b[1] == 0 {
		return 0, errors.New("ntp: kiss-o'-death from server")
	}
	// the timestamp starts at byte 40 of the received packet and is four bytes,
	// this is NTP time (seconds since Jan 1 1900):
	t := binary.BigEndian.Uint32(b[40:44])
	if t < seventyYears {
		return 0, fmt.Errorf("ntp: transmit timestamp %d before 1970", t)
	}
	return uint64(t - seventyYears), nil
}
