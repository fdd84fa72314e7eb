package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHash_HexAndBytesRoundTrip(t *testing.T) {
	h := BytesToHash([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, h, HexToHash(h.Hex()))
	assert.True(t, len(h.Bytes()) == HashLength)
}

func TestHash_IsZero(t *testing.T) {
	assert.True(t, Hash{}.IsZero())
	assert.False(t, BytesToHash([]byte{0x01}).IsZero())
}

func TestHash_CmpAndLess(t *testing.T) {
	a := BytesToHash([]byte{0x01})
	b := BytesToHash([]byte{0x02})
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestNetwork_Valid(t *testing.T) {
	assert.True(t, NetworkMainnet.Valid())
	assert.True(t, NetworkTestnet.Valid())
	assert.True(t, NetworkDevnet.Valid())
	assert.False(t, NetworkUnspecified.Valid())
}

func TestTimestamp_FromUnixMillisSaturatesAtZero(t *testing.T) {
	before := FarcasterEpoch.Add(-time.Hour).UnixMilli()
	assert.Equal(t, Timestamp(0), TimestampFromUnixMillis(before))
}

func TestTimestamp_TimeRoundTrip(t *testing.T) {
	ts := TimestampFromUnixMillis(FarcasterEpoch.Add(5 * time.Second).UnixMilli())
	assert.Equal(t, FarcasterEpoch.Add(5*time.Second), ts.Time())
}

func TestTimestamp_SubSaturatesAtZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), Timestamp(100).Sub(Timestamp(200)))
	assert.Equal(t, 100*time.Millisecond, Timestamp(200).Sub(Timestamp(100)))
}

func TestTimestamp_PaddedASCIIPreservesChronologicalOrder(t *testing.T) {
	earlier := Timestamp(5).PaddedASCII()
	later := Timestamp(123456789).PaddedASCII()
	assert.True(t, string(earlier[:]) < string(later[:]))
	assert.Equal(t, "0000000005", string(earlier[:]))
}
