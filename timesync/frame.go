package timesync

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ajanata/deskclock"
	"github.com/ajanata/deskclock/civil"
)

// FrameSize is the length of a frame on the link: one little-endian uint64 of seconds since the Unix epoch.
const FrameSize = 8

// DefaultOffset is subtracted from every accepted epoch value before it is broken down.
const DefaultOffset = 14400 * time.Second

// Window bounds the epoch values the synchronizer accepts. Both bounds are exclusive.
type Window struct {
	Lower uint64
	Upper uint64
}

// DefaultWindow spans the years 2022 to 3022.
var DefaultWindow = Window{Lower: 1_640_995_200, Upper: 33_197_904_000}

func (w Window) Contains(v uint64) bool {
	return v > w.Lower && v < w.Upper
}

// DecodeFrame reads the epoch value out of a frame.
func DecodeFrame(b []byte) (uint64, error) {
	if len(b) != FrameSize {
		return 0, fmt.Errorf("timesync: %w: frame of %d bytes", deskclock.ErrInvalidArgument, len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// AppendFrame appends the frame for v to dst.
func AppendFrame(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// EncodeFrame returns a fresh frame for v.
func EncodeFrame(v uint64) [FrameSize]byte {
	var b [FrameSize]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b
}

// ToCivil breaks an epoch value down into a 24-hour date and time after subtracting offset.
func ToCivil(epoch uint64, offset time.Duration) civil.DateTime {
	return civil.FromEpoch(epoch, offset)
}
