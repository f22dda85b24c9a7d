package uart

import (
	"time"

	"github.com/ajanata/deskclock/internal/syncutil"
)

// Shared is a Port that several writers use at once, such as the logger and the debug console on the same port.
// Each Write reaches the port whole, so lines from different writers never interleave mid-line. Reads pass through
// unlocked.
type Shared struct {
	port Port
	mu   syncutil.Mutex
}

func NewShared(p Port) *Shared {
	return &Shared{port: p}
}

func (s *Shared) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *Shared) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Write(p)
}

func (s *Shared) Close() error {
	return s.port.Close()
}

func (s *Shared) SetReadTimeout(t time.Duration) error {
	return s.port.SetReadTimeout(t)
}
