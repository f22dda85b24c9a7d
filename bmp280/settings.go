package bmp280

import "fmt"

// Oversampling is the temperature oversampling rate.
type Oversampling uint8

const (
	SamplingSkipped Oversampling = iota
	SamplingX1
	SamplingX2
	SamplingX4
	SamplingX8
	SamplingX16
)

// Filter is the IIR filter coefficient.
type Filter uint8

const (
	FilterOff Filter = iota
	FilterX2
	FilterX4
	FilterX8
	FilterX16
)

// Standby is the inactive time between measurements in normal mode.
type Standby uint8

const (
	Standby1ms    Standby = iota // 0.5 ms
	Standby63ms                  // 62.5 ms
	Standby125ms
	Standby250ms
	Standby500ms
	Standby1000ms
	Standby2000ms
	Standby4000ms
)

// Mode is the power mode.
type Mode uint8

const (
	ModeSleep  Mode = 0b00
	ModeForced Mode = 0b01
	ModeNormal Mode = 0b11
)

// Settings maps onto the config and ctrl_meas registers. Only the fields below are touched when writing; pressure
// oversampling and the SPI 3-wire bit keep whatever the device holds.
type Settings struct {
	Standby      Standby
	Filter       Filter
	Oversampling Oversampling
	Mode         Mode
}

// Valid reports whether every field holds a value the datasheet defines.
func (s Settings) Valid() bool {
	return s.Standby <= Standby4000ms &&
		s.Filter <= FilterX16 &&
		s.Oversampling <= SamplingX16 &&
		(s.Mode == ModeSleep || s.Mode == ModeForced || s.Mode == ModeNormal)
}

// DefaultSettings samples once per second with no filtering.
var DefaultSettings = Settings{
	Standby:      Standby1000ms,
	Filter:       FilterOff,
	Oversampling: SamplingX1,
	Mode:         ModeNormal,
}

func (s Settings) encodeConfig(reg uint8) uint8 {
	reg &^= standbyMask | filterMask
	reg |= (uint8(s.Standby) << standbyShift) & standbyMask
	reg |= (uint8(s.Filter) << filterShift) & filterMask
	return reg
}

func (s Settings) encodeControl(reg uint8) uint8 {
	reg &^= samplingMask | modeMask
	reg |= (uint8(s.Oversampling) << samplingShift) & samplingMask
	reg |= (uint8(s.Mode) << modeShift) & modeMask
	return reg
}

func decodeSettings(config, control uint8) Settings {
	return Settings{
		Standby:      Standby((config & standbyMask) >> standbyShift),
		Filter:       Filter((config & filterMask) >> filterShift),
		Oversampling: Oversampling((control & samplingMask) >> samplingShift),
		Mode:         Mode((control & modeMask) >> modeShift),
	}
}

var (
	samplingNames = [...]string{"skipped", "x1", "x2", "x4", "x8", "x16"}
	filterNames   = [...]string{"off", "x2", "x4", "x8", "x16"}
	standbyNames  = [...]string{"0.5ms", "62.5ms", "125ms", "250ms", "500ms", "1000ms", "2000ms", "4000ms"}
)

func (o Oversampling) String() string {
	if int(o) < len(samplingNames) {
		return samplingNames[o]
	}
	return fmt.Sprintf("Oversampling(%d)", uint8(o))
}

func (f Filter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}

func (s Standby) String() string {
	if int(s) < len(standbyNames) {
		return standbyNames[s]
	}
	return fmt.Sprintf("Standby(%d)", uint8(s))
}

func (m Mode) String() string {
	switch m {
	case ModeSleep:
		return "sleep"
	case ModeForced:
		return "forced"
	case ModeNormal:
		return "normal"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (s Settings) String() string {
	return fmt.Sprintf("standby=%s filter=%s oversampling=%s mode=%s", s.Standby, s.Filter, s.Oversampling, s.Mode)
}
