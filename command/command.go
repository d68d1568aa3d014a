package command

import (
	"fmt"

	"github.com/robmorgan/steppatron/notetable"
)

const (
	// Off is the note value that silences an actuator.
	Off uint8 = 0xFF

	// RecordSize is the length of one command or status record on the wire.
	RecordSize = 2
)

// Command instructs one actuator to sound a note or to stop.
type Command struct {
	Actuator uint8
	Note     uint8
}

// Play returns a command sounding note on actuator.
func Play(actuator, note uint8) Command {
	return Command{Actuator: actuator, Note: note}
}

// Stop returns a command silencing actuator.
func Stop(actuator uint8) Command {
	return Command{Actuator: actuator, Note: Off}
}

// IsOff reports whether the command silences its actuator.
func (c Command) IsOff() bool {
	return c.Note == Off
}

// Validate checks the note is OFF or a playable note.
func (c Command) Validate() error {
	if c.IsOff() || notetable.Valid(c.Note) {
		return nil
	}
	return &ProtocolError{
		Reason: fmt.Sprintf("note %d outside %d..%d", c.Note, notetable.MinNote, notetable.MaxNote),
		Record: c.Bytes(),
	}
}

// Bytes returns the wire record [actuator, note].
func (c Command) Bytes() []byte {
	return []byte{c.Actuator, c.Note}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c Command) MarshalBinary() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Command) UnmarshalBinary(b []byte) error {
	cmd, err := Decode(b)
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

// Decode parses one wire record. Anything but exactly RecordSize bytes, or a note that is neither OFF nor
// playable, is a ProtocolError.
func Decode(b []byte) (Command, error) {
	if len(b) != RecordSize {
		return Command{}, &ProtocolError{
			Reason: fmt.Sprintf("record of %d bytes, want %d", len(b), RecordSize),
			Record: append([]byte(nil), b...),
		}
	}
	c := Command{Actuator: b[0], Note: b[1]}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}

func (c Command) String() string {
	if c.IsOff() {
		return fmt.Sprintf("actuator %d off", c.Actuator)
	}
	return fmt.Sprintf("actuator %d note %d (%s)", c.Actuator, c.Note, notetable.Name(c.Note))
}
