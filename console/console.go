// Package console answers line commands on the debug serial port. Lines are split with shell quoting rules, so
// arguments may be quoted.
//
//	time | date | day       current wall clock reading
//	temp                    compensated temperature
//	settings                sensor measurement settings
//	settings FIELD VALUE    change one setting (standby, filter, oversampling, mode)
//	help
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog/log"

	"github.com/ajanata/deskclock/bmp280"
	"github.com/ajanata/deskclock/readout"
)

// ErrUnknownCommand is returned for a command word nothing answers to.
var ErrUnknownCommand = errors.New("unknown command")

type Clock interface {
	TimeString() (string, error)
	DateString() (string, error)
	DayName() (string, error)
}

type Sensor interface {
	ReadTemperature() (float64, error)
	Settings() (bmp280.Settings, error)
	ApplySettings(s bmp280.Settings) error
}

type command struct {
	help string
	run  func(args []string) (string, error)
}

type Console struct {
	sensor   Sensor
	commands map[string]command
}

func New(clock Clock, sensor Sensor) *Console {
	c := &Console{sensor: sensor}
	c.commands = map[string]command{
		"time":     {"current time", noArgs(clock.TimeString)},
		"date":     {"current date (DD/MM/YY)", noArgs(clock.DateString)},
		"day":      {"current day of the week", noArgs(clock.DayName)},
		"temp":     {"temperature in degrees Celsius", noArgs(c.temperature)},
		"settings": {"show or change sensor settings: settings [FIELD VALUE]", c.settings},
		"help":     {"list commands", noArgs(c.help)},
	}
	return c
}

// Exec runs one command line. An empty line yields an empty answer.
func (c *Console) Exec(line string) (string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("console: %w", err)
	}
	if len(words) == 0 {
		return "", nil
	}
	cmd, ok := c.commands[strings.ToLower(words[0])]
	if !ok {
		return "", fmt.Errorf("console: %w: %q", ErrUnknownCommand, words[0])
	}
	return cmd.run(words[1:])
}

// Serve answers commands read from r on w until r ends or ctx is done. Reads that return nothing, as a serial port
// does on its read timeout, are retried.
func (c *Console) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(&patientReader{ctx: ctx, r: r})
	for sc.Scan() {
		out, err := c.Exec(strings.TrimRight(sc.Text(), "\r"))
		if err != nil {
			log.Debug().Err(err).Msg("console: command failed")
			out = "error: " + err.Error()
		}
		if out == "" {
			continue
		}
		if _, err := io.WriteString(w, out+"\r\n"); err != nil {
			return fmt.Errorf("console: %w", err)
		}
	}
	err := sc.Err()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Console) temperature() (string, error) {
	t, err := c.sensor.ReadTemperature()
	if err != nil {
		return "", err
	}
	return readout.Temperature(t) + " C", nil
}

func (c *Console) settings(args []string) (string, error) {
	s, err := c.sensor.Settings()
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return s.String(), nil
	}
	if len(args) != 2 {
		return "", errors.New("usage: settings FIELD VALUE")
	}

	field, value := strings.ToLower(args[0]), strings.ToLower(args[1])
	switch field {
	case "standby":
		err = parse(value, &s.Standby, bmp280.Standby4000ms)
	case "filter":
		err = parse(value, &s.Filter, bmp280.FilterX16)
	case "oversampling":
		err = parse(value, &s.Oversampling, bmp280.SamplingX16)
	case "mode":
		err = parse(value, &s.Mode, bmp280.ModeNormal)
	default:
		err = fmt.Errorf("unknown setting %q", args[0])
	}
	if err != nil {
		return "", err
	}
	if err := c.sensor.ApplySettings(s); err != nil {
		return "", err
	}
	return s.String(), nil
}

func (c *Console) help() (string, error) {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\r\n")
		}
		fmt.Fprintf(&b, "%-9s %s", name, c.commands[name].help)
	}
	return b.String(), nil
}

func noArgs(fn func() (string, error)) func([]string) (string, error) {
	return func(args []string) (string, error) {
		if len(args) > 0 {
			return "", fmt.Errorf("unexpected arguments %q", args)
		}
		return fn()
	}
}

// parse matches value against the names of every enum value up to last.
func parse[T interface {
	~uint8
	String() string
}](value string, dst *T, last T) error {
	for v := T(0); v <= last; v++ {
		if v.String() == value {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("invalid value %q", value)
}

type patientReader struct {
	ctx context.Context
	r   io.Reader
}

func (p *patientReader) Read(b []byte) (int, error) {
	for {
		if err := p.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := p.r.Read(b)
		if n > 0 || err != nil {
			return n, err
		}
	}
}
