package livein

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/robmorgan/steppatron/logger"
	"gitlab.com/gomidi/midi/v2"
)

// ReadStream parses a raw MIDI byte stream, such as a serial MIDI port or an ALSA rawmidi device, and sends
// its note events to out. Running status is honoured, real-time and system exclusive bytes are skipped.
// It returns nil at end of stream.
func ReadStream(ctx context.Context, r io.Reader, out chan<- Event) error {
	logger := logger.GetProjectLogger().WithField("component", "livein")
	br := bufio.NewReader(r)

	var (
		status  byte
		data    []byte
		inSysEx bool
	)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch {
		case b >= 0xF8:
			continue
		case b == 0xF0:
			inSysEx = true
			status = 0
			continue
		case b == 0xF7:
			inSysEx = false
			continue
		case b >= 0xF1:
			// system common messages cancel running status
			status = 0
			inSysEx = false
			continue
		case b >= 0x80:
			status = b
			data = data[:0]
			inSysEx = false
			continue
		case inSysEx || status == 0:
			continue
		}

		data = append(data, b)
		if len(data) < streamParams(status) {
			continue
		}

		msg := midi.Message(append([]byte{status}, data...))
		data = data[:0]
		ev, ok := FromMessage(msg)
		if !ok {
			logger.Debugf("Ignoring %s", msg)
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func streamParams(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}
