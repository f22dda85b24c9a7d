// Package pcf8574 is a driver for the PCF8574 I2C GPIO expander, as found on the backpack boards that drive character
// LCDs over two wires.
//
// The port is quasi-bidirectional. A pin written high is only held up by a weak pullup, so it also works as an input
// that reads low when something pulls it down; a pin written low sinks current.
//
// Datasheet: https://cdn-learn.adafruit.com/assets/assets/000/113/910/original/pcf8574.pdf
package pcf8574

import (
	"github.com/ajanata/deskclock"
)

const (
	DefaultAddress = 0x20
	// BackpackAddress is where the common PCF8574T LCD backpacks answer with all address jumpers open.
	BackpackAddress = 0x27
)

type Device struct {
	bus  deskclock.I2C
	addr uint16
	// last value written to the port
	state uint8
}

type Config struct {
	Address uint8
}

type Report uint8

// New returns a driver on bus with every pin released high. The chip is rated for 100 kHz.
func New(bus deskclock.I2C) *Device {
	return &Device{
		bus:   bus,
		addr:  DefaultAddress,
		state: 0xFF,
	}
}

// Configure selects the address. Zero keeps DefaultAddress.
func (d *Device) Configure(c Config) {
	addr := c.Address
	if addr == 0 {
		addr = DefaultAddress
	}
	d.addr = uint16(addr)
}

// SetPin drives one pin and leaves the others as last written. High releases the pin to its weak pullup; low sinks.
func (d *Device) SetPin(pin uint8, high bool) error {
	mask := uint8(1) << pin
	next := d.state &^ mask
	if high {
		next |= mask
	}
	return d.SetAll(next)
}

// SetAll writes every pin from its bit in state.
func (d *Device) SetAll(state uint8) error {
	return d.Stream(state)
}

// Stream latches each state in turn within one bus transaction. The pins end up at the last one.
func (d *Device) Stream(states ...uint8) error {
	if len(states) == 0 {
		return nil
	}
	d.state = states[len(states)-1]
	return d.send(states...)
}

// State returns the pin state last written.
func (d *Device) State() uint8 {
	return d.state
}

func (d *Device) send(states ...uint8) error {
	if err := d.bus.Tx(d.addr, states, nil); err != nil {
		return &deskclock.TransportError{Device: "pcf8574", Op: "write", Err: err}
	}
	return nil
}

// Read samples the level of every pin. The chip has no registers: a one byte read is the port.
func (d *Device) Read() (Report, error) {
	b := make([]byte, 1)
	if err := d.bus.Tx(d.addr, nil, b); err != nil {
		return 0, &deskclock.TransportError{Device: "pcf8574", Op: "read", Err: err}
	}
	return Report(b[0]), nil
}

// Pin reports whether pin p read high.
func (r Report) Pin(p uint8) bool {
	return r>>p&1 == 1
}
