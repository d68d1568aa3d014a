package notetable

import (
	"fmt"
	"math"
	"time"
)

const (
	// MinNote is A0, the lowest playable MIDI note.
	MinNote uint8 = 21
	// MaxNote is C8, the highest playable MIDI note.
	MaxNote uint8 = 108

	// DefaultMaxSustain is how long a note may sound without a new command before the watchdog silences it.
	DefaultMaxSustain = 8 * time.Second

	concertA     = 440.0
	concertANote = 69
)

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Entry describes how an actuator sounds one note.
type Entry struct {
	Note      uint8
	Frequency float64

	// HalfPeriod is the time between two consecutive step pin transitions.
	HalfPeriod time.Duration

	// WatchdogBound is the number of half-periods after which a note is forcibly stopped.
	WatchdogBound uint32
}

// Name returns the scientific pitch name of the entry, e.g. "A4".
func (e Entry) Name() string {
	return Name(e.Note)
}

// Table maps every playable note to its Entry.
type Table struct {
	maxSustain time.Duration
	entries    [int(MaxNote-MinNote) + 1]Entry
}

// Default is the table used when no maximum sustain is configured.
var Default = New(DefaultMaxSustain)

// New builds an equal-tempered table whose watchdog bounds correspond to maxSustain.
func New(maxSustain time.Duration) *Table {
	t := &Table{maxSustain: maxSustain}
	for n := MinNote; n <= MaxNote; n++ {
		freq := Frequency(n)
		half := time.Duration(math.Round(float64(time.Second) / (2 * freq)))
		bound := uint32(maxSustain / half)
		if bound < 1 {
			bound = 1
		}
		t.entries[n-MinNote] = Entry{
			Note:          n,
			Frequency:     freq,
			HalfPeriod:    half,
			WatchdogBound: bound,
		}
	}
	return t
}

// MaxSustain returns the sustain the watchdog bounds were derived from.
func (t *Table) MaxSustain() time.Duration {
	return t.maxSustain
}

// Lookup returns the entry for note, or false when the note is outside MinNote..MaxNote.
func (t *Table) Lookup(note uint8) (Entry, bool) {
	if !Valid(note) {
		return Entry{}, false
	}
	return t.entries[note-MinNote], true
}

// Valid reports whether note can be played.
func Valid(note uint8) bool {
	return note >= MinNote && note <= MaxNote
}

// Frequency returns the equal-tempered frequency of a MIDI note in Hz.
func Frequency(note uint8) float64 {
	return concertA * math.Pow(2, float64(int(note)-concertANote)/12)
}

// Name returns the scientific pitch name of a MIDI note.
func Name(note uint8) string {
	return fmt.Sprintf("%s%d", pitchNames[note%12], int(note)/12-1)
}
