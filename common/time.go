package common

import "time"

// FarcasterEpoch is 2021-01-01T00:00:00Z, the zero point for every
// in-message timestamp (GLOSSARY, spec.md §3).
var FarcasterEpoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// Timestamp is an unsigned 32-bit count of milliseconds since FarcasterEpoch.
type Timestamp uint32

// TimestampFromUnixMillis converts a standard Unix millisecond timestamp
// into a farcaster-epoch Timestamp. Values before FarcasterEpoch saturate
// to zero rather than wrapping.
func TimestampFromUnixMillis(unixMillis int64) Timestamp {
	delta := unixMillis - FarcasterEpoch.UnixMilli()
	if delta < 0 {
		return 0
	}
	return Timestamp(delta)
}

// Now returns the current time as a farcaster-epoch Timestamp.
func Now() Timestamp {
	return TimestampFromUnixMillis(time.Now().UnixMilli())
}

// Time converts t back to a standard time.Time.
func (t Timestamp) Time() time.Time {
	return FarcasterEpoch.Add(time.Duration(t) * time.Millisecond)
}

// Sub returns t-other as a time.Duration, saturating at zero instead of
// going negative, since callers only ever use it for age comparisons.
func (t Timestamp) Sub(other Timestamp) time.Duration {
	if other > t {
		return 0
	}
	return time.Duration(t-other) * time.Millisecond
}

// PaddedASCII renders t as the 10-byte zero-padded ASCII decimal string
// used as the chronological prefix of a Sync ID (spec.md §3): byte order
// equals chronological order because the field is fixed-width and the
// encoding is ASCII '0'-'9'.
func (t Timestamp) PaddedASCII() [10]byte {
	var out [10]byte
	v := uint64(t)
	for i := 9; i >= 0; i-- {
		out[i] = byte('0' + v%10)
		v /= 10
	}
	return out
}
