package rhythm

import "fmt"

// Position locates a tick within bars and beats of the current time signature.
type Position struct {
	Tick uint64
	Bar  uint64
	Beat uint64

	// Remainder is the number of ticks past the start of Beat.
	Remainder uint64
}

// GetPosition computes the one-based bar and beat of an absolute tick, assuming the current time signature
// has held since tick zero.
func (t *Tempo) GetPosition(tick uint64) Position {
	num, den := t.GetTimeSignature()
	ticksPerBeat := uint64(t.ticksPerQuarter) * 4 / uint64(den)
	if ticksPerBeat == 0 {
		ticksPerBeat = 1
	}
	beats := tick / ticksPerBeat
	return Position{
		Tick:      tick,
		Bar:       beats/uint64(num) + 1,
		Beat:      beats%uint64(num) + 1,
		Remainder: tick % ticksPerBeat,
	}
}

// IsDownBeat checks whether the position falls exactly on the first beat of a bar.
func (p Position) IsDownBeat() bool {
	return p.Beat == 1 && p.Remainder == 0
}

// GetMarker returns the position as "bar.beat.tick".
func (p Position) GetMarker() string {
	return fmt.Sprintf("%d.%d.%03d", p.Bar, p.Beat, p.Remainder)
}
