package civil

import "time"

// FromEpoch converts seconds since 1970-01-01T00:00:00Z into a 24-hour DateTime after subtracting offset, using
// proleptic Gregorian UTC fields.
func FromEpoch(seconds uint64, offset time.Duration) DateTime {
	t := time.Unix(int64(seconds), 0).UTC().Add(-offset)
	return FromTime(t)
}
