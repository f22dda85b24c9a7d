// Package bmp280 implements a driver for the Bosch BMP280 pressure and temperature sensor, limited to the compensated
// temperature reading and the measurement settings. Pressure compensation is not implemented.
//
// Datasheet: https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bmp280-ds001.pdf
package bmp280

import (
	"encoding/binary"
	"fmt"

	"github.com/ajanata/deskclock"
)

type Device struct {
	bus        deskclock.I2C
	addr       uint8
	cal        Calibration
	calibrated bool
}

type Config struct {
	// Address defaults to Address (SDO grounded).
	Address uint8
}

// New creates a new driver on the provided, already configured I2C bus.
func New(bus deskclock.I2C) *Device {
	return &Device{
		bus:  bus,
		addr: Address,
	}
}

// Configure verifies the chip signature and loads the calibration words. It must succeed before any temperature read.
func (d *Device) Configure(c Config) error {
	if c.Address != 0 {
		d.addr = c.Address
	}
	d.calibrated = false

	id, err := d.read8(RegChipID)
	if err != nil {
		return err
	}
	if id != ChipID {
		return fmt.Errorf("bmp280: %w: chip id 0x%02X, want 0x%02X", deskclock.ErrIdentityMismatch, id, ChipID)
	}

	_, err = d.LoadCalibration()
	return err
}

// LoadCalibration reads the three temperature trimming words. Configure calls it once; it is exported for callers
// that manage the identity check themselves.
func (d *Device) LoadCalibration() (Calibration, error) {
	var cal Calibration

	t1, err := d.read16(RegDigT1)
	if err != nil {
		return cal, err
	}
	t2, err := d.read16(RegDigT2)
	if err != nil {
		return cal, err
	}
	t3, err := d.read16(RegDigT3)
	if err != nil {
		return cal, err
	}

	cal = Calibration{T1: t1, T2: int16(t2), T3: int16(t3)}
	d.cal = cal
	d.calibrated = true
	return cal, nil
}

// Calibration returns the words loaded by Configure.
func (d *Device) Calibration() Calibration {
	return d.cal
}

// ReadTemperatureHundredths returns the compensated temperature in hundredths of a degree Celsius.
func (d *Device) ReadTemperatureHundredths() (int32, error) {
	if !d.calibrated {
		return 0, fmt.Errorf("bmp280: %w: calibration not loaded", deskclock.ErrNotInitialized)
	}
	var buf [3]byte
	if err := d.bus.ReadRegister(d.addr, RegTempData, buf[:]); err != nil {
		return 0, d.transportError("read", RegTempData, err)
	}
	return d.cal.Compensate(RawTemperature(buf)), nil
}

// ReadTemperature returns the compensated temperature in degrees Celsius with two decimals of precision.
func (d *Device) ReadTemperature() (float64, error) {
	t, err := d.ReadTemperatureHundredths()
	if err != nil {
		return 0, err
	}
	return float64(t) / 100, nil
}

// Settings reads the measurement settings back from the device.
func (d *Device) Settings() (Settings, error) {
	config, err := d.read8(RegConfig)
	if err != nil {
		return Settings{}, err
	}
	control, err := d.read8(RegControl)
	if err != nil {
		return Settings{}, err
	}
	return decodeSettings(config, control), nil
}

// SetSettings writes s with a read-modify-write of each register so unrelated bits are preserved.
func (d *Device) SetSettings(s Settings) error {
	if !s.Valid() {
		return fmt.Errorf("bmp280: %w: settings %v", deskclock.ErrInvalidArgument, s)
	}

	config, err := d.read8(RegConfig)
	if err != nil {
		return err
	}
	if err := d.write8(RegConfig, s.encodeConfig(config)); err != nil {
		return err
	}

	control, err := d.read8(RegControl)
	if err != nil {
		return err
	}
	return d.write8(RegControl, s.encodeControl(control))
}

// ApplySettings writes s and reads it back. A difference means the device did not accept the write.
func (d *Device) ApplySettings(s Settings) error {
	if err := d.SetSettings(s); err != nil {
		return err
	}
	got, err := d.Settings()
	if err != nil {
		return err
	}
	if got != s {
		return fmt.Errorf("bmp280: %w: wrote %v, read back %v", deskclock.ErrConfigMismatch, s, got)
	}
	return nil
}

// Reset issues a soft reset. Calibration must be loaded again afterwards.
func (d *Device) Reset() error {
	d.calibrated = false
	return d.write8(RegSoftReset, SoftResetCode)
}

func (d *Device) read8(reg uint8) (uint8, error) {
	buf := [1]byte{}
	if err := d.bus.ReadRegister(d.addr, reg, buf[:]); err != nil {
		return 0, d.transportError("read", reg, err)
	}
	return buf[0], nil
}

// read16 reads a little endian word.
func (d *Device) read16(reg uint8) (uint16, error) {
	buf := [2]byte{}
	if err := d.bus.ReadRegister(d.addr, reg, buf[:]); err != nil {
		return 0, d.transportError("read", reg, err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (d *Device) write8(reg, val uint8) error {
	buf := [1]byte{val}
	if err := d.bus.WriteRegister(d.addr, reg, buf[:]); err != nil {
		return d.transportError("write", reg, err)
	}
	return nil
}

func (d *Device) transportError(op string, reg uint8, err error) error {
	return &deskclock.TransportError{Device: "bmp280", Op: op, Reg: reg, Err: err}
}
