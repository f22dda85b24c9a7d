package clockapp

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

// HaltPolicy decides what happens after a fatal error.
type HaltPolicy uint8

const (
	// HaltSpin stops doing anything and waits forever, leaving the last display contents up.
	HaltSpin HaltPolicy = iota
	// HaltExit exits non-zero so a supervisor can restart the clock.
	HaltExit
)

func (p HaltPolicy) String() string {
	if p == HaltExit {
		return "exit"
	}
	return "spin"
}

var exit = os.Exit

// Halt logs err and applies the policy. HaltSpin returns only when ctx is done.
func (p HaltPolicy) Halt(ctx context.Context, err error) {
	log.Error().Err(err).Stringer("policy", p).Msg("clockapp: fatal error, halting")
	if p == HaltExit {
		exit(1)
		return
	}
	<-ctx.Done()
}
