package command

import "fmt"

// Status is the read-back record of one actuator: the note it is sounding, or Off.
type Status struct {
	Actuator uint8
	Note     uint8
}

// Sounding reports whether the actuator is playing a note.
func (s Status) Sounding() bool {
	return s.Note != Off
}

// EncodeStatus serializes one record per actuator, in order.
func EncodeStatus(statuses []Status) []byte {
	out := make([]byte, 0, len(statuses)*RecordSize)
	for _, s := range statuses {
		out = append(out, s.Actuator, s.Note)
	}
	return out
}

// DecodeStatus parses a status read-back buffer.
func DecodeStatus(b []byte) ([]Status, error) {
	if len(b)%RecordSize != 0 {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("status buffer of %d bytes is not a multiple of %d", len(b), RecordSize),
			Record: append([]byte(nil), b...),
		}
	}
	out := make([]Status, 0, len(b)/RecordSize)
	for i := 0; i < len(b); i += RecordSize {
		out = append(out, Status{Actuator: b[i], Note: b[i+1]})
	}
	return out, nil
}
