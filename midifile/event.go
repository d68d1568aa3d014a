package midifile

import "fmt"

// Kind is the class of a track event.
type Kind uint8

const (
	KindChannel Kind = iota
	KindMeta
	KindSysEx
)

func (k Kind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindMeta:
		return "meta"
	case KindSysEx:
		return "sysex"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Channel message types (upper nibble of the status byte).
const (
	NoteOff         byte = 0x80
	NoteOn          byte = 0x90
	PolyAftertouch  byte = 0xA0
	ControlChange   byte = 0xB0
	ProgramChange   byte = 0xC0
	ChannelPressure byte = 0xD0
	PitchBend       byte = 0xE0
)

// Meta event types used during playback.
const (
	MetaSequenceNumber byte = 0x00
	MetaText           byte = 0x01
	MetaCopyright      byte = 0x02
	MetaTrackName      byte = 0x03
	MetaInstrumentName byte = 0x04
	MetaLyric          byte = 0x05
	MetaMarker         byte = 0x06
	MetaCuePoint       byte = 0x07
	MetaChannelPrefix  byte = 0x20
	MetaEndOfTrack     byte = 0x2F
	MetaTempo          byte = 0x51
	MetaSMPTEOffset    byte = 0x54
	MetaTimeSignature  byte = 0x58
	MetaKeySignature   byte = 0x59
)

const (
	statusMeta      byte = 0xFF
	statusSysEx     byte = 0xF0
	statusSysExCont byte = 0xF7
)

// Event is one decoded track event. Delta is the tick distance from the previous event in the same track.
type Event struct {
	Delta uint32
	Kind  Kind

	// Status is the raw status byte: 0x80-0xEF for channel events, 0xFF for meta, 0xF0/0xF7 for sysex.
	Status byte

	// MetaType is only meaningful for meta events.
	MetaType byte

	// Data holds the channel parameters (one or two bytes) or the meta/sysex payload.
	Data []byte
}

// Type returns the channel message type (status with the channel nibble cleared).
func (e Event) Type() byte {
	return e.Status & 0xF0
}

// Channel returns the zero-based MIDI channel of a channel event.
func (e Event) Channel() uint8 {
	return e.Status & 0x0F
}

// Note returns the key and velocity of a Note-On or Note-Off event.
func (e Event) Note() (key, velocity uint8, ok bool) {
	if e.Kind != KindChannel || len(e.Data) != 2 {
		return 0, 0, false
	}
	switch e.Type() {
	case NoteOn, NoteOff:
		return e.Data[0], e.Data[1], true
	}
	return 0, 0, false
}

// IsNoteOn reports a Note-On with non-zero velocity.
func (e Event) IsNoteOn() bool {
	_, vel, ok := e.Note()
	return ok && e.Type() == NoteOn && vel > 0
}

// IsNoteOff reports a Note-Off, including a Note-On with zero velocity.
func (e Event) IsNoteOff() bool {
	_, vel, ok := e.Note()
	return ok && (e.Type() == NoteOff || vel == 0)
}

// IsEndOfTrack reports the end-of-track meta event.
func (e Event) IsEndOfTrack() bool {
	return e.Kind == KindMeta && e.MetaType == MetaEndOfTrack
}

// Tempo returns the microseconds per quarter note carried by a tempo meta event.
func (e Event) Tempo() (uint32, bool) {
	if e.Kind != KindMeta || e.MetaType != MetaTempo || len(e.Data) < 3 {
		return 0, false
	}
	return uint32(e.Data[0])<<16 | uint32(e.Data[1])<<8 | uint32(e.Data[2]), true
}

// TimeSignature returns the numerator and the denominator as a power of two.
func (e Event) TimeSignature() (numerator, denominatorPow uint8, ok bool) {
	if e.Kind != KindMeta || e.MetaType != MetaTimeSignature || len(e.Data) < 2 {
		return 0, 0, false
	}
	return e.Data[0], e.Data[1], true
}

// Text returns the payload of the textual meta events (0x01-0x07).
func (e Event) Text() (string, bool) {
	if e.Kind != KindMeta || e.MetaType < MetaText || e.MetaType > MetaCuePoint {
		return "", false
	}
	return string(e.Data), true
}

func (e Event) String() string {
	switch e.Kind {
	case KindMeta:
		return fmt.Sprintf("+%d meta %#02x % x", e.Delta, e.MetaType, e.Data)
	case KindSysEx:
		return fmt.Sprintf("+%d sysex %#02x (%d bytes)", e.Delta, e.Status, len(e.Data))
	}
	return fmt.Sprintf("+%d ch%d %#02x % x", e.Delta, e.Channel()+1, e.Type(), e.Data)
}

// channelParams returns how many data bytes follow a channel status byte.
func channelParams(status byte) int {
	switch status & 0xF0 {
	case ProgramChange, ChannelPressure:
		return 1
	}
	return 2
}
