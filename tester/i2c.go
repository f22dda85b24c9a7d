// Package tester provides fake devices for exercising drivers without hardware.
package tester

import (
	"errors"
	"fmt"
)

// ErrBus is returned by a fake bus when a failure has been injected.
var ErrBus = errors.New("tester: injected bus failure")

// I2CBus is a fake I2C bus. Devices are attached by address; transactions to an unknown address fail like a NACK.
type I2CBus struct {
	devices map[uint8]*I2CDevice
}

// NewI2CBus returns an empty bus.
func NewI2CBus() *I2CBus {
	return &I2CBus{devices: map[uint8]*I2CDevice{}}
}

// AddDevice attaches a device with a zeroed 256 byte register file at addr.
func (b *I2CBus) AddDevice(addr uint8) *I2CDevice {
	d := &I2CDevice{Addr: addr}
	b.devices[addr] = d
	return d
}

func (b *I2CBus) device(addr uint8) (*I2CDevice, error) {
	d, ok := b.devices[addr]
	if !ok {
		return nil, fmt.Errorf("tester: no device at 0x%02X", addr)
	}
	return d, nil
}

func (b *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	d, err := b.device(addr)
	if err != nil {
		return err
	}
	return d.read(r, buf)
}

func (b *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	d, err := b.device(addr)
	if err != nil {
		return err
	}
	return d.write(r, buf)
}

// Tx treats the first written byte as a register pointer, like most register-file devices. A write without a
// register pointer goes to Port, which models pointer-less devices such as GPIO expanders.
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	d, err := b.device(uint8(addr))
	if err != nil {
		return err
	}
	if d.Pointerless {
		return d.port(w, r)
	}
	if len(w) == 0 {
		return d.read(d.pointer, r)
	}
	d.pointer = w[0]
	if len(w) > 1 {
		if err := d.write(w[0], w[1:]); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		return d.read(d.pointer, r)
	}
	return nil
}

// I2CDevice is a register-file device on a fake bus.
type I2CDevice struct {
	Addr      uint8
	Registers [256]byte

	// Pointerless devices have no register file; every write lands in Writes and reads return Port.
	Pointerless bool
	Port        byte
	Writes      []byte

	// FailAfter makes every transaction after the given number of successful ones fail. Negative disables it.
	FailAfter int
	// ReadOnly registers silently ignore writes, which models a device rejecting a configuration.
	ReadOnly map[uint8]bool
	// Masks are ANDed into written values, which models reserved bits a device refuses to latch.
	Masks map[uint8]byte

	pointer uint8
	count   int
	armed   bool
}

// FailAfterN arms failure injection after n more transactions succeed.
func (d *I2CDevice) FailAfterN(n int) {
	d.FailAfter = n
	d.count = 0
	d.armed = true
}

func (d *I2CDevice) tick() error {
	if !d.armed {
		return nil
	}
	if d.count >= d.FailAfter {
		return ErrBus
	}
	d.count++
	return nil
}

func (d *I2CDevice) read(r uint8, buf []byte) error {
	if err := d.tick(); err != nil {
		return err
	}
	for i := range buf {
		buf[i] = d.Registers[uint8(int(r)+i)]
	}
	return nil
}

func (d *I2CDevice) write(r uint8, buf []byte) error {
	if err := d.tick(); err != nil {
		return err
	}
	for i, v := range buf {
		reg := uint8(int(r) + i)
		if d.ReadOnly[reg] {
			continue
		}
		if m, ok := d.Masks[reg]; ok {
			v &= m
		}
		d.Registers[reg] = v
	}
	return nil
}

func (d *I2CDevice) port(w, r []byte) error {
	if err := d.tick(); err != nil {
		return err
	}
	if len(w) > 0 {
		d.Writes = append(d.Writes, w...)
		d.Port = w[len(w)-1]
	}
	for i := range r {
		r[i] = d.Port
	}
	return nil
}
