package stepper

import (
	"sync"
	"time"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/notetable"
	"k8s.io/utils/clock"
)

// NoPin marks an unused line in a Patch.
const NoPin = -1

// Patch wires one actuator to its GPIO lines.
type Patch struct {
	StepPin int
	DirPin  int
}

// State is a snapshot of one actuator.
type State struct {
	// Note is the note being sounded, command.Off when idle.
	Note    uint8
	Enabled bool
	Level   bool

	// Elapsed counts half-periods since the last command; the actuator stops when it reaches Bound.
	Elapsed uint32
	Bound   uint32

	HalfPeriod time.Duration
}

// Stepper is the oscillator of one actuator. Every field is guarded by mu; the timer callback holds mu for its
// whole run and ignores itself once generation has moved on, so a cancelled timer never acts.
type Stepper struct {
	mu    sync.Mutex
	index uint8
	patch Patch

	history uint8
	enabled bool
	level   bool
	elapsed uint32
	bound   uint32

	entry       notetable.Entry
	current     time.Duration
	transitions int
	deadline    time.Time
	timer       clock.Timer
	generation  uint64
}

func newStepper(index uint8, patch Patch) *Stepper {
	return &Stepper{index: index, patch: patch, history: command.Off}
}

func (s *Stepper) stateLocked() State {
	note := s.history
	if !s.enabled {
		note = command.Off
	}
	return State{
		Note:       note,
		Enabled:    s.enabled,
		Level:      s.level,
		Elapsed:    s.elapsed,
		Bound:      s.bound,
		HalfPeriod: s.current,
	}
}
