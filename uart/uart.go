// Package uart opens the serial links the clock talks over: the receive side of the link from the time-source peer
// and the optional debug port. Both run 8N1 without flow control.
package uart

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the rate of the debug port and the peer link.
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds a single read. A read that times out returns zero bytes, which the frame receiver
	// treats as an idle gap between frames.
	DefaultReadTimeout = 500 * time.Millisecond
)

// Port is the part of a serial port the clock uses.
type Port interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
}

// PortFactory opens a serial port. Tests replace it with an in-memory port.
type PortFactory func(path string, mode *serial.Mode) (Port, error)

// DefaultPortFactory opens a real serial port.
func DefaultPortFactory(path string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

type Config struct {
	Path        string
	BaudRate    int
	ReadTimeout time.Duration
}

// Mode returns the 8N1 mode for c, filling in the default baud rate.
func (c Config) Mode() *serial.Mode {
	baud := c.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens the port described by c through factory, or through DefaultPortFactory when factory is nil.
func Open(c Config, factory PortFactory) (Port, error) {
	if c.Path == "" {
		return nil, errors.New("uart: no port path")
	}
	if factory == nil {
		factory = DefaultPortFactory
	}

	port, err := factory(c.Path, c.Mode())
	if err != nil {
		return nil, fmt.Errorf("uart: %s: %w", c.Path, err)
	}

	timeout := c.ReadTimeout
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("uart: %s: failed to set read timeout: %w", c.Path, err)
	}
	return port, nil
}

// Ports lists the serial ports present on the host.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("uart: failed to list ports: %w", err)
	}
	return ports, nil
}
