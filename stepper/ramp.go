package stepper

import (
	"time"

	"github.com/robmorgan/steppatron/notetable"
	"github.com/robmorgan/steppatron/utils"
)

// Ramp spins a motor up from StartHz to the note's frequency over Steps full periods. A zero Ramp is off.
type Ramp struct {
	Steps   int
	StartHz float64
}

func (r Ramp) applies(e notetable.Entry) bool {
	return r.Steps > 0 && r.StartHz > 0 && r.StartHz < e.Frequency
}

// halfPeriod returns the length of the given half-period (counted from the note start).
func (r Ramp) halfPeriod(e notetable.Entry, transition int) time.Duration {
	if !r.applies(e) || transition >= 2*r.Steps {
		return e.HalfPeriod
	}
	freq := utils.RampValue(r.StartHz, e.Frequency, transition/2, r.Steps)
	return time.Duration(float64(time.Second) / (2 * freq))
}
