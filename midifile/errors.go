package midifile

import "fmt"

// ErrorKind classifies a FormatError.
type ErrorKind int

const (
	BadMagic ErrorKind = iota + 1
	UnsupportedTimecodeDivision
	UnsupportedFormat
	TruncatedChunk
	InvalidStatusByte
	VarIntOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case BadMagic:
		return "bad magic"
	case UnsupportedTimecodeDivision:
		return "unsupported timecode division"
	case UnsupportedFormat:
		return "unsupported format"
	case TruncatedChunk:
		return "truncated chunk"
	case InvalidStatusByte:
		return "invalid status byte"
	case VarIntOverflow:
		return "variable-length integer overflow"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// FormatError reports a malformed or unsupported Standard MIDI File. Offset is the byte offset into the file
// at which the problem was detected.
type FormatError struct {
	Kind   ErrorKind
	Offset int
	Detail string
}

// Sentinels for errors.Is comparisons; only the Kind is compared.
var (
	ErrBadMagic                    = &FormatError{Kind: BadMagic}
	ErrUnsupportedTimecodeDivision = &FormatError{Kind: UnsupportedTimecodeDivision}
	ErrUnsupportedFormat           = &FormatError{Kind: UnsupportedFormat}
	ErrTruncatedChunk              = &FormatError{Kind: TruncatedChunk}
	ErrInvalidStatusByte           = &FormatError{Kind: InvalidStatusByte}
	ErrVarIntOverflow              = &FormatError{Kind: VarIntOverflow}
)

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("midi file: %s at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("midi file: %s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

// Is matches any FormatError of the same kind.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

func formatErrorf(kind ErrorKind, offset int, format string, args ...interface{}) *FormatError {
	return &FormatError{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
