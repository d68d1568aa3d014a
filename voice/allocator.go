package voice

import (
	"sync"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/notetable"
)

// Allocator assigns live notes to a fixed pool of actuators. A free actuator is preferred; when all are
// busy the actuator whose note is nearest in pitch is stolen, ties going to the lowest index.
type Allocator struct {
	mu    sync.Mutex
	notes []uint8
}

// NewAllocator returns an allocator for n actuators, all free.
func NewAllocator(n int) *Allocator {
	return &Allocator{notes: offs(n)}
}

// Assign chooses the actuator for note and records it as sounding. A note that is already sounding keeps
// its actuator.
func (a *Allocator) Assign(note uint8) (int, error) {
	if !notetable.Valid(note) {
		return -1, ErrNoteOutOfRange
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.notes) == 0 {
		return -1, ErrNoActuators
	}
	idx := a.pick(note)
	a.notes[idx] = note
	return idx, nil
}

func (a *Allocator) pick(note uint8) int {
	for i, n := range a.notes {
		if n == note {
			return i
		}
	}
	for i, n := range a.notes {
		if n == command.Off {
			return i
		}
	}

	best, bestDist := 0, 1<<8
	for i, n := range a.notes {
		dist := int(n) - int(note)
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// Release frees the lowest-indexed actuator sounding note. It returns false when note is not sounding.
func (a *Allocator) Release(note uint8) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, n := range a.notes {
		if n == note && n != command.Off {
			a.notes[i] = command.Off
			return i, true
		}
	}
	return -1, false
}

// NoteOn implements Router. The track is ignored.
func (a *Allocator) NoteOn(_ int, note uint8) (command.Command, error) {
	idx, err := a.Assign(note)
	if err != nil {
		return command.Command{}, err
	}
	return command.Play(uint8(idx), note), nil
}

// NoteOff implements Router. The track is ignored.
func (a *Allocator) NoteOff(_ int, note uint8) (command.Command, bool) {
	idx, ok := a.Release(note)
	if !ok {
		return command.Command{}, false
	}
	return command.Stop(uint8(idx)), true
}

// Silence implements Router.
func (a *Allocator) Silence() []command.Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	return silence(a.notes)
}

// Actuators implements Router.
func (a *Allocator) Actuators() int {
	return len(a.notes)
}

// Sounding returns a copy of the note held by each actuator, command.Off for free ones.
func (a *Allocator) Sounding() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uint8(nil), a.notes...)
}
