// Package periphbus puts a host I2C bus, opened through periph.io, behind the register interface the drivers use.
package periphbus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/ajanata/deskclock/internal/syncutil"
)

// Bus adapts an i2c.Bus. Transactions are serialized, so the display, the sensor and the RTC can share it across
// goroutines.
type Bus struct {
	bus i2c.Bus
	mu  syncutil.Mutex
}

func New(b i2c.Bus) *Bus {
	return &Bus{bus: b}
}

// Open initializes the host drivers and opens the named bus. An empty name opens the first bus found.
func Open(name string) (*Bus, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periphbus: host init: %w", err)
	}
	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("periphbus: open %q: %w", name, err)
	}
	return New(bc), bc.Close, nil
}

func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, r)
	w = append(w, buf...)
	return b.Tx(uint16(addr), w, nil)
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Tx(addr, w, r)
}

func (b *Bus) String() string {
	return b.bus.String()
}
