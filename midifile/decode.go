package midifile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	headerMagic     = "MThd"
	trackMagic      = "MTrk"
	chunkHeaderSize = 8
	headerDataSize  = 6

	timecodeDivision = 0x8000
)

// Header is the MThd chunk of a Standard MIDI File.
type Header struct {
	Format   uint16
	Tracks   uint16
	Division uint16
}

// TicksPerQuarter returns the metrical division of the file.
func (h Header) TicksPerQuarter() uint16 {
	return h.Division
}

// Track is the ordered list of events of one MTrk chunk.
type Track struct {
	Events []Event
}

// HasNotes reports whether the track carries at least one Note-On.
func (t Track) HasNotes() bool {
	for _, e := range t.Events {
		if e.IsNoteOn() {
			return true
		}
	}
	return false
}

// Name returns the first track name meta event, if any.
func (t Track) Name() string {
	for _, e := range t.Events {
		if e.Kind == KindMeta && e.MetaType == MetaTrackName {
			return string(e.Data)
		}
	}
	return ""
}

// File is a decoded Standard MIDI File.
type File struct {
	Header Header
	Tracks []Track
}

// ReadFile reads and decodes the named file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// DecodeReader reads r to the end and decodes it.
func DecodeReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a format 0 or format 1 Standard MIDI File with a ticks-per-quarter division. Event payloads
// alias data. Running status is not supported.
func Decode(data []byte) (*File, error) {
	d := &decoder{data: data}

	h, err := d.header()
	if err != nil {
		return nil, err
	}

	f := &File{Header: h, Tracks: make([]Track, 0, h.Tracks)}
	for i := 0; i < int(h.Tracks); i++ {
		start, body, err := d.chunk(trackMagic)
		if err != nil {
			return nil, err
		}
		events, err := decodeTrack(body, start)
		if err != nil {
			return nil, err
		}
		f.Tracks = append(f.Tracks, Track{Events: events})
	}
	return f, nil
}

type decoder struct {
	data []byte
	pos  int
}

// chunk consumes a chunk header with the given magic and returns the offset and bytes of its body.
func (d *decoder) chunk(magic string) (int, []byte, error) {
	if len(d.data)-d.pos < chunkHeaderSize {
		return 0, nil, formatErrorf(TruncatedChunk, d.pos, "need %d bytes for %s chunk header, have %d",
			chunkHeaderSize, magic, len(d.data)-d.pos)
	}
	if got := string(d.data[d.pos : d.pos+4]); got != magic {
		return 0, nil, formatErrorf(BadMagic, d.pos, "expected %q, got %q", magic, got)
	}
	length := int(binary.BigEndian.Uint32(d.data[d.pos+4 : d.pos+8]))
	start := d.pos + chunkHeaderSize
	if length < 0 || length > len(d.data)-start {
		return 0, nil, formatErrorf(TruncatedChunk, d.pos, "%s chunk declares %d bytes, %d available",
			magic, length, len(d.data)-start)
	}
	d.pos = start + length
	return start, d.data[start:d.pos], nil
}

func (d *decoder) header() (Header, error) {
	start, body, err := d.chunk(headerMagic)
	if err != nil {
		return Header{}, err
	}
	if len(body) < headerDataSize {
		return Header{}, formatErrorf(TruncatedChunk, start, "header holds %d bytes, need %d", len(body), headerDataSize)
	}

	h := Header{
		Format:   binary.BigEndian.Uint16(body[0:2]),
		Tracks:   binary.BigEndian.Uint16(body[2:4]),
		Division: binary.BigEndian.Uint16(body[4:6]),
	}
	if h.Division&timecodeDivision != 0 {
		return Header{}, formatErrorf(UnsupportedTimecodeDivision, start+4, "division %#04x", h.Division)
	}
	if h.Division == 0 {
		return Header{}, formatErrorf(UnsupportedTimecodeDivision, start+4, "zero ticks per quarter")
	}
	if h.Format > 1 {
		return Header{}, formatErrorf(UnsupportedFormat, start, "format %d", h.Format)
	}
	return h, nil
}

// decodeTrack parses every event in body. base is the file offset of body.
func decodeTrack(body []byte, base int) ([]Event, error) {
	var events []Event
	p := 0
	for p < len(body) {
		delta, n, err := ReadVarInt(body[p:])
		if err != nil {
			return nil, rebase(err, base+p)
		}
		p += n

		if p >= len(body) {
			return nil, formatErrorf(TruncatedChunk, base+p, "event without status byte")
		}
		status := body[p]
		statusAt := p
		p++

		ev := Event{Delta: delta, Status: status}
		switch {
		case status == statusMeta:
			if p >= len(body) {
				return nil, formatErrorf(TruncatedChunk, base+p, "meta event without type")
			}
			ev.Kind = KindMeta
			ev.MetaType = body[p]
			p++
			if ev.Data, p, err = payload(body, p, base); err != nil {
				return nil, err
			}
		case status == statusSysEx || status == statusSysExCont:
			ev.Kind = KindSysEx
			if ev.Data, p, err = payload(body, p, base); err != nil {
				return nil, err
			}
		case status >= NoteOff && status < 0xF0:
			ev.Kind = KindChannel
			params := channelParams(status)
			if len(body)-p < params {
				return nil, formatErrorf(TruncatedChunk, base+p, "channel event %#02x needs %d data bytes", status, params)
			}
			ev.Data = body[p : p+params]
			p += params
		default:
			return nil, formatErrorf(InvalidStatusByte, base+statusAt, "status %#02x", status)
		}
		events = append(events, ev)
	}
	return events, nil
}

// payload reads a length-prefixed meta or sysex body starting at p.
func payload(body []byte, p, base int) ([]byte, int, error) {
	length, n, err := ReadVarInt(body[p:])
	if err != nil {
		return nil, p, rebase(err, base+p)
	}
	p += n
	if int(length) > len(body)-p {
		return nil, p, formatErrorf(TruncatedChunk, base+p, "payload of %d bytes, %d left in track", length, len(body)-p)
	}
	return body[p : p+int(length)], p + int(length), nil
}

func rebase(err error, offset int) error {
	if fe, ok := err.(*FormatError); ok {
		fe.Offset += offset
		return fe
	}
	return fmt.Errorf("offset %d: %w", offset, err)
}
