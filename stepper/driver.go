package stepper

import (
	"fmt"
	"time"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/notetable"
	"github.com/robmorgan/steppatron/pin"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// MaxActuators is the number of actuators a one byte index can address.
const MaxActuators = 256

// Driver owns the actuators and applies commands to them. It is safe for concurrent use.
type Driver struct {
	steppers []*Stepper
	pins     pin.Controller
	table    *notetable.Table
	clock    clock.WithDelayedExecution
	ramp     Ramp
	log      *logrus.Entry
}

// NewDriver configures every patched line as a low output and returns a driver with all actuators idle.
func NewDriver(pins pin.Controller, table *notetable.Table, clk clock.WithDelayedExecution, patches ...Patch) (*Driver, error) {
	if len(patches) == 0 || len(patches) > MaxActuators {
		return nil, fmt.Errorf("actuator count %d outside 1..%d", len(patches), MaxActuators)
	}

	d := &Driver{
		pins:  pins,
		table: table,
		clock: clk,
		log:   logger.GetProjectLogger().WithField("component", "stepper"),
	}
	for i, p := range patches {
		for _, line := range []int{p.StepPin, p.DirPin} {
			if line == NoPin {
				continue
			}
			if err := pins.SetDirection(line, pin.Output); err != nil {
				return nil, fmt.Errorf("actuator %d: %w", i, err)
			}
			if err := pins.SetLow(line); err != nil {
				return nil, fmt.Errorf("actuator %d: %w", i, err)
			}
		}
		d.steppers = append(d.steppers, newStepper(uint8(i), p))
	}
	return d, nil
}

// SetRamp enables the spin-up ramp for notes started from now on.
func (d *Driver) SetRamp(r Ramp) {
	for _, s := range d.steppers {
		s.mu.Lock()
	}
	d.ramp = r
	for _, s := range d.steppers {
		s.mu.Unlock()
	}
}

// Count returns the number of actuators.
func (d *Driver) Count() int {
	return len(d.steppers)
}

// Send applies one command. An OFF silences the actuator, a new note restarts its oscillator and the note it
// is already sounding only resets the watchdog count.
func (d *Driver) Send(c command.Command) error {
	if int(c.Actuator) >= len(d.steppers) {
		return &command.ProtocolError{
			Reason: fmt.Sprintf("actuator %d does not exist, have %d", c.Actuator, len(d.steppers)),
			Record: c.Bytes(),
		}
	}
	var entry notetable.Entry
	if !c.IsOff() {
		var ok bool
		if entry, ok = d.table.Lookup(c.Note); !ok {
			return c.Validate()
		}
	}

	s := d.steppers[c.Actuator]
	s.mu.Lock()
	defer s.mu.Unlock()

	d.log.WithFields(logrus.Fields{"actuator": c.Actuator, "note": c.Note}).Debug("Command")

	switch {
	case c.IsOff():
		err := d.stopLocked(s)
		s.history = command.Off
		return err
	case c.Note == s.history && s.enabled:
		s.elapsed = 0
		return nil
	default:
		if err := d.stopLocked(s); err != nil {
			return err
		}
		s.history = c.Note
		s.entry = entry
		s.bound = entry.WatchdogBound
		s.enabled = true
		s.transitions = 0
		d.armLocked(s)
		return nil
	}
}

// Write applies a single wire record. Any write that is not exactly one valid record is a ProtocolError.
func (d *Driver) Write(p []byte) (int, error) {
	c, err := command.Decode(p)
	if err != nil {
		return 0, err
	}
	if err := d.Send(c); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Status returns one record per actuator in index order.
func (d *Driver) Status() []command.Status {
	out := make([]command.Status, len(d.steppers))
	for i, s := range d.steppers {
		s.mu.Lock()
		out[i] = command.Status{Actuator: s.index, Note: s.stateLocked().Note}
		s.mu.Unlock()
	}
	return out
}

// StatusBytes returns the status records in wire format.
func (d *Driver) StatusBytes() []byte {
	return command.EncodeStatus(d.Status())
}

// State returns a snapshot of one actuator.
func (d *Driver) State(actuator int) (State, error) {
	if actuator < 0 || actuator >= len(d.steppers) {
		return State{}, fmt.Errorf("actuator %d does not exist", actuator)
	}
	s := d.steppers[actuator]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(), nil
}

// States returns a snapshot of every actuator.
func (d *Driver) States() []State {
	out := make([]State, len(d.steppers))
	for i, s := range d.steppers {
		s.mu.Lock()
		out[i] = s.stateLocked()
		s.mu.Unlock()
	}
	return out
}

// Close silences every actuator in ascending order and leaves its step line low.
func (d *Driver) Close() error {
	var first error
	for _, s := range d.steppers {
		s.mu.Lock()
		if err := d.stopLocked(s); err != nil && first == nil {
			first = err
		}
		s.history = command.Off
		s.mu.Unlock()
	}
	return first
}

// stopLocked cancels the pending timer and idles the actuator.
func (d *Driver) stopLocked(s *Stepper) error {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.enabled = false
	s.elapsed = 0
	s.current = 0
	if !s.level {
		return nil
	}
	s.level = false
	if err := d.pins.SetLow(s.patch.StepPin); err != nil {
		return fmt.Errorf("actuator %d: %w", s.index, err)
	}
	return nil
}

func (d *Driver) armLocked(s *Stepper) {
	s.current = d.ramp.halfPeriod(s.entry, s.transitions)
	s.deadline = d.clock.Now().Add(s.current)
	d.scheduleLocked(s, s.current)
}

func (d *Driver) scheduleLocked(s *Stepper, delay time.Duration) {
	gen := s.generation
	// fire reads the clock, so it must not run on the goroutine delivering the timer.
	s.timer = d.clock.AfterFunc(delay, func() {
		go d.fire(s, gen)
	})
}

// fire toggles the step line once and schedules the next half-period relative to the previous deadline, so
// callback latency does not accumulate.
func (d *Driver) fire(s *Stepper, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || !s.enabled {
		return
	}

	s.level = !s.level
	if err := pin.Set(d.pins, s.patch.StepPin, s.level); err != nil {
		d.log.WithFields(logrus.Fields{"actuator": s.index, "pin": s.patch.StepPin}).Errorf("Pin write failed: %v", err)
	}
	s.elapsed++
	s.transitions++

	if s.elapsed >= s.bound {
		d.log.WithFields(logrus.Fields{"actuator": s.index, "note": s.history, "half_periods": s.elapsed}).
			Warn("Watchdog silenced actuator")
		if err := d.stopLocked(s); err != nil {
			d.log.WithField("actuator", s.index).Errorf("Stop failed: %v", err)
		}
		s.history = command.Off
		return
	}

	s.current = d.ramp.halfPeriod(s.entry, s.transitions)
	s.deadline = s.deadline.Add(s.current)
	d.scheduleLocked(s, s.deadline.Sub(d.clock.Now()))
}
