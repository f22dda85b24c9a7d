// Package config loads the clock's TOML configuration. Every field has a default, so a missing file runs the
// deployed configuration: network seed over the link, 24-hour time, refresh every five seconds.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/ajanata/deskclock/civil"
)

const DefaultPath = "deskclock.toml"

// ManualLayout is the layout of manual and fallback date/times.
const ManualLayout = "2006-01-02 15:04:05"

const (
	SeedNetwork = "network"
	SeedManual  = "manual"

	HaltSpin = "spin"
	HaltExit = "exit"
)

// Duration is a time.Duration written as a Go duration string ("5s", "4h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Values struct {
	DebugLogging bool    `toml:"debug_logging"`
	LogFile      string  `toml:"log_file"`
	HourFormat   string  `toml:"hour_format"`
	Halt         string  `toml:"halt"`
	I2C          I2C     `toml:"i2c"`
	Sync         Sync    `toml:"sync"`
	Refresh      Refresh `toml:"refresh"`
	Debug        Serial  `toml:"debug"`
	MQTT         MQTT    `toml:"mqtt"`
	Peer         Peer    `toml:"peer"`
}

type I2C struct {
	// Bus is the host bus name; empty picks the first one.
	Bus           string `toml:"bus"`
	SensorAddress uint8  `toml:"sensor_address"`
	// RTC selects the PCF8523 as time base; otherwise a software oscillator keeps time.
	RTC        bool  `toml:"rtc"`
	LCD        bool  `toml:"lcd"`
	LCDAddress uint8 `toml:"lcd_address"`
	Backlight  bool  `toml:"backlight"`
}

type Serial struct {
	Port        string   `toml:"port"`
	BaudRate    int      `toml:"baud_rate"`
	ReadTimeout Duration `toml:"read_timeout"`
}

type Sync struct {
	Mode   string   `toml:"mode"`
	Link   Serial   `toml:"link"`
	Offset Duration `toml:"offset"`
	// Deadline bounds the boot-time wait for the peer. Zero waits forever.
	Deadline Duration `toml:"deadline"`
	// Manual is the seed in manual mode and the fallback after an expired deadline.
	Manual string `toml:"manual"`
	// Fallback enables the manual date/time as a fallback in network mode.
	Fallback bool `toml:"fallback"`
}

type Refresh struct {
	Period Duration `toml:"period"`
	Poll   Duration `toml:"poll"`
}

type MQTT struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
}

type Peer struct {
	NTPServer     string   `toml:"ntp_server"`
	QueryInterval Duration `toml:"query_interval"`
	SendInterval  Duration `toml:"send_interval"`
	Link          Serial   `toml:"link"`
}

var BaseDefaults = Values{
	HourFormat: "24h",
	Halt:       HaltSpin,
	I2C: I2C{
		SensorAddress: 0x76,
		RTC:           true,
		LCD:           true,
		LCDAddress:    0x27,
		Backlight:     true,
	},
	Sync: Sync{
		Mode: SeedNetwork,
		Link: Serial{
			Port:        "/dev/ttyUSB0",
			BaudRate:    115200,
			ReadTimeout: Duration{500 * time.Millisecond},
		},
		Offset: Duration{4 * time.Hour},
		Manual: "2022-09-11 18:24:00",
	},
	Refresh: Refresh{
		Period: Duration{5 * time.Second},
		Poll:   Duration{10 * time.Millisecond},
	},
	Debug: Serial{BaudRate: 115200},
	MQTT: MQTT{
		Topic:    "deskclock/reading",
		ClientID: "deskclock",
	},
	Peer: Peer{
		NTPServer:     "pool.ntp.org:123",
		QueryInterval: Duration{time.Second},
		SendInterval:  Duration{5 * time.Second},
		Link: Serial{
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
	},
}

// Load reads path from fsys over the defaults. A missing file is not an error.
func Load(fsys afero.Fs, path string) (Values, error) {
	vals := BaseDefaults

	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", path).Msg("config: no config file, using defaults")
		return vals, nil
	} else if err != nil {
		return Values{}, fmt.Errorf("config: %w", err)
	}

	if err := toml.Unmarshal(data, &vals); err != nil {
		return Values{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := Validate(&vals); err != nil {
		return Values{}, fmt.Errorf("config: %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("config: loaded")
	return vals, nil
}

// Validate checks values without changing them.
func Validate(v *Values) error {
	if _, err := v.Format(); err != nil {
		return err
	}
	switch v.Halt {
	case HaltSpin, HaltExit:
	default:
		return fmt.Errorf("halt must be %q or %q, got %q", HaltSpin, HaltExit, v.Halt)
	}
	switch v.Sync.Mode {
	case SeedNetwork:
		if v.Sync.Link.Port == "" {
			return errors.New("sync.link.port is required in network mode")
		}
	case SeedManual:
	default:
		return fmt.Errorf("sync.mode must be %q or %q, got %q", SeedNetwork, SeedManual, v.Sync.Mode)
	}
	if v.Sync.Mode == SeedManual || v.Sync.Fallback {
		if _, err := v.ManualDateTime(); err != nil {
			return err
		}
	}
	if v.Sync.Deadline.Duration < 0 {
		return errors.New("sync.deadline must not be negative")
	}
	if v.Refresh.Period.Duration <= 0 {
		return errors.New("refresh.period must be positive")
	}
	if v.Refresh.Poll.Duration <= 0 {
		return errors.New("refresh.poll must be positive")
	}
	if v.I2C.SensorAddress != 0x76 && v.I2C.SensorAddress != 0x77 {
		return fmt.Errorf("i2c.sensor_address must be 0x76 or 0x77, got 0x%02X", v.I2C.SensorAddress)
	}
	if v.I2C.LCDAddress < 0x20 || v.I2C.LCDAddress > 0x27 {
		return fmt.Errorf("i2c.lcd_address must be within 0x20-0x27, got 0x%02X", v.I2C.LCDAddress)
	}
	if v.Peer.QueryInterval.Duration <= 0 || v.Peer.SendInterval.Duration <= 0 {
		return errors.New("peer.query_interval and peer.send_interval must be positive")
	}
	if v.MQTT.Broker != "" && v.MQTT.Topic == "" {
		return errors.New("mqtt.topic is required when a broker is set")
	}
	return nil
}

// Format returns the configured hour format.
func (v *Values) Format() (civil.HourFormat, error) {
	switch v.HourFormat {
	case "24h", "":
		return civil.Hour24, nil
	case "12h":
		return civil.Hour12, nil
	}
	return 0, fmt.Errorf("hour_format must be \"24h\" or \"12h\", got %q", v.HourFormat)
}

// ManualDateTime parses the manual seed into a 24-hour date/time with a matching weekday.
func (v *Values) ManualDateTime() (civil.DateTime, error) {
	t, err := time.Parse(ManualLayout, v.Sync.Manual)
	if err != nil {
		return civil.DateTime{}, fmt.Errorf("sync.manual: %w", err)
	}
	if t.Year() < civil.Century || t.Year() > civil.Century+99 {
		return civil.DateTime{}, fmt.Errorf("sync.manual: year %d outside %d-%d", t.Year(), civil.Century, civil.Century+99)
	}
	return civil.FromTime(t), nil
}
