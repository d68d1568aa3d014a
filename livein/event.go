package livein

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Event is a live note event from any input source.
type Event struct {
	On       bool
	Channel  uint8
	Note     uint8
	Velocity uint8
}

func (e Event) String() string {
	if e.On {
		return fmt.Sprintf("ch%d note on %d vel %d", e.Channel+1, e.Note, e.Velocity)
	}
	return fmt.Sprintf("ch%d note off %d", e.Channel+1, e.Note)
}

// FromMessage converts a MIDI message to an Event. Messages other than note on and note off (including
// note on with zero velocity) are not events.
func FromMessage(msg midi.Message) (Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return Event{On: true, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetNoteEnd(&ch, &key):
		return Event{Channel: ch, Note: key}, true
	}
	return Event{}, false
}
