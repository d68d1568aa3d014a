package voice

import (
	"errors"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
)

var (
	// ErrNoteOutOfRange is returned for notes outside the playable range.
	ErrNoteOutOfRange = errors.New("note outside playable range")

	// ErrUnmappedTrack is returned when a track has no actuator assigned.
	ErrUnmappedTrack = errors.New("track has no actuator")

	// ErrNoActuators is returned when a note is routed to an empty pool.
	ErrNoActuators = errors.New("no actuators configured")
)

// Router turns note events into actuator commands.
type Router interface {
	// NoteOn picks an actuator for note and returns the command that sounds it.
	NoteOn(track int, note uint8) (command.Command, error)

	// NoteOff returns the command releasing note, or false when note is not sounding.
	NoteOff(track int, note uint8) (command.Command, bool)

	// Silence marks every actuator free and returns an OFF command per actuator in ascending order.
	Silence() []command.Command

	// Actuators returns the number of actuators routed to.
	Actuators() int
}

func silence(notes []uint8) []command.Command {
	out := make([]command.Command, len(notes))
	for i := range notes {
		notes[i] = command.Off
		out[i] = command.Stop(uint8(i))
	}
	return out
}

func offs(n int) []uint8 {
	notes := make([]uint8, n)
	for i := range notes {
		notes[i] = command.Off
	}
	return notes
}

// Shutdown silences every actuator of r through sink in ascending order. Delivery failures do not stop the
// sequence; the first one is returned.
func Shutdown(r Router, sink command.Sink) error {
	log := logger.GetProjectLogger()

	var first error
	for _, c := range r.Silence() {
		if err := sink.Send(c); err != nil {
			log.WithField("actuator", c.Actuator).Errorf("Failed to silence actuator: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
