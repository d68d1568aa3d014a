package rhythm

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultMicrosPerQuarter is 120 beats per minute.
	DefaultMicrosPerQuarter = 500000

	DefaultNumerator      = 4
	DefaultDenominatorPow = 2

	// MaxDenominatorPow keeps the denominator a positive int on 32-bit platforms.
	MaxDenominatorPow = 30
)

// Tempo holds the timing state of a playing file: the tempo, the time signature and the file's division.
// Changes take effect for the next tick interval converted.
type Tempo struct {
	mu               sync.Mutex
	microsPerQuarter uint32
	numerator        uint8
	denominatorPow   uint8
	ticksPerQuarter  uint16
}

// NewTempo creates a Tempo at 120 bpm in 4/4 for a file with the given division.
func NewTempo(ticksPerQuarter uint16) *Tempo {
	return &Tempo{
		microsPerQuarter: DefaultMicrosPerQuarter,
		numerator:        DefaultNumerator,
		denominatorPow:   DefaultDenominatorPow,
		ticksPerQuarter:  ticksPerQuarter,
	}
}

// SetTempo sets the microseconds per quarter note. Zero is ignored.
func (t *Tempo) SetTempo(microsPerQuarter uint32) {
	if microsPerQuarter == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.microsPerQuarter = microsPerQuarter
}

// SetTimeSignature sets the time signature; the denominator is given as a power of two. A zero numerator or a
// power above MaxDenominatorPow leaves the signature unchanged and returns false.
func (t *Tempo) SetTimeSignature(numerator, denominatorPow uint8) bool {
	if numerator == 0 || denominatorPow > MaxDenominatorPow {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.numerator = numerator
	t.denominatorPow = denominatorPow
	return true
}

// GetMicrosPerQuarter returns the current tempo.
func (t *Tempo) GetMicrosPerQuarter() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.microsPerQuarter
}

// GetTimeSignature returns the numerator and the denominator (not its power).
func (t *Tempo) GetTimeSignature() (numerator, denominator int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.numerator), 1 << t.denominatorPow
}

// GetTicksPerQuarter returns the file's division.
func (t *Tempo) GetTicksPerQuarter() uint16 {
	return t.ticksPerQuarter
}

// GetBPM returns the tempo in quarter notes per minute.
func (t *Tempo) GetBPM() float64 {
	return 60e6 / float64(t.GetMicrosPerQuarter())
}

// TicksToDuration converts a tick interval to wall-clock time at the current tempo:
// ticks * microsPerQuarter * 1000 / ticksPerQuarter nanoseconds.
func (t *Tempo) TicksToDuration(ticks uint32) time.Duration {
	ns := uint64(ticks) * uint64(t.GetMicrosPerQuarter()) * 1000 / uint64(t.ticksPerQuarter)
	return time.Duration(ns)
}

func (t *Tempo) String() string {
	num, den := t.GetTimeSignature()
	return fmt.Sprintf("%d/%d @ %.2f bpm", num, den, t.GetBPM())
}
