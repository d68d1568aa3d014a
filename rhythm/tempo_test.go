package rhythm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTempo(t *testing.T) {
	t.Parallel()

	// Create a new tempo with the default of 120 bpm
	tempo := NewTempo(96)
	assert.Equal(t, 120.0, tempo.GetBPM())

	// One quarter note lasts 500ms
	assert.Equal(t, 500*time.Millisecond, tempo.TicksToDuration(96))

	// Try to change the tempo
	tempo.SetTempo(468750)
	assert.Equal(t, 128.0, tempo.GetBPM())
	assert.Equal(t, 468750*time.Microsecond, tempo.TicksToDuration(96))

	// A zero tempo is ignored
	tempo.SetTempo(0)
	assert.Equal(t, uint32(468750), tempo.GetMicrosPerQuarter())
}

func TestTicksToDurationIsExact(t *testing.T) {
	t.Parallel()

	tempo := NewTempo(480)
	tempo.SetTempo(600000)

	// 1 tick = 600000us / 480 = 1250us
	assert.Equal(t, 1250*time.Microsecond, tempo.TicksToDuration(1))
	assert.Equal(t, time.Duration(0), tempo.TicksToDuration(0))

	// large deltas do not overflow
	assert.Equal(t, time.Duration(0x0FFFFFFF)*1250*time.Microsecond, tempo.TicksToDuration(0x0FFFFFFF))
}

func TestTimeSignature(t *testing.T) {
	t.Parallel()

	tempo := NewTempo(96)
	num, den := tempo.GetTimeSignature()
	assert.Equal(t, 4, num)
	assert.Equal(t, 4, den)

	tempo.SetTimeSignature(6, 3)
	num, den = tempo.GetTimeSignature()
	assert.Equal(t, 6, num)
	assert.Equal(t, 8, den)
	assert.Equal(t, "6/8 @ 120.00 bpm", tempo.String())

	// a zero numerator or an oversized denominator power is ignored
	assert.False(t, tempo.SetTimeSignature(0, 2))
	assert.False(t, tempo.SetTimeSignature(4, 64))
	assert.False(t, tempo.SetTimeSignature(4, MaxDenominatorPow+1))
	assert.Equal(t, "6/8 @ 120.00 bpm", tempo.String())
	assert.Equal(t, "1.1.000", tempo.GetPosition(0).GetMarker())

	assert.True(t, tempo.SetTimeSignature(1, MaxDenominatorPow))
	assert.Equal(t, uint64(3), tempo.GetPosition(2).Bar)
}

func TestPosition(t *testing.T) {
	t.Parallel()

	tempo := NewTempo(96)

	p := tempo.GetPosition(0)
	assert.Equal(t, "1.1.000", p.GetMarker())
	assert.True(t, p.IsDownBeat())

	p = tempo.GetPosition(96*5 + 12)
	assert.Equal(t, uint64(2), p.Bar)
	assert.Equal(t, uint64(2), p.Beat)
	assert.Equal(t, uint64(12), p.Remainder)
	assert.False(t, p.IsDownBeat())

	tempo.SetTimeSignature(3, 3)
	p = tempo.GetPosition(48 * 3)
	assert.Equal(t, "2.1.000", p.GetMarker())
}
