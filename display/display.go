// Package display describes the character display the clock writes to and provides a terminal stand-in for it.
package display

import (
	"fmt"
	"io"

	"github.com/ajanata/deskclock"
)

const (
	Rows    = 4
	Columns = 20
)

// Display accepts fixed-width text at a 1-based (row, column) cursor position.
type Display interface {
	Clear() error
	Home() error
	SetCursor(row, col uint8) error
	Print(s string) error
	ShowCursor(on bool) error
}

// CheckCursor validates a 1-based position against the 4x20 geometry.
func CheckCursor(row, col uint8) error {
	if row < 1 || row > Rows || col < 1 || col > Columns {
		return fmt.Errorf("display: %w: cursor %d,%d outside %dx%d", deskclock.ErrInvalidArgument, row, col, Rows, Columns)
	}
	return nil
}

// Console renders to a terminal with ANSI escape sequences.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Clear() error {
	return c.write("\x1b[2J\x1b[H")
}

func (c *Console) Home() error {
	return c.write("\x1b[H")
}

func (c *Console) SetCursor(row, col uint8) error {
	if err := CheckCursor(row, col); err != nil {
		return err
	}
	return c.write(fmt.Sprintf("\x1b[%d;%dH", row, col))
}

func (c *Console) Print(s string) error {
	return c.write(s)
}

func (c *Console) ShowCursor(on bool) error {
	if on {
		return c.write("\x1b[?25h")
	}
	return c.write("\x1b[?25l")
}

func (c *Console) write(s string) error {
	_, err := io.WriteString(c.w, s)
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
