//go:build !rtmidi

package livein

import (
	"context"
	"errors"
)

var errNoRtmidi = errors.New("MIDI port input is not included in this build (build with -tags rtmidi)")

// ListInputs returns the names of the MIDI input ports.
func ListInputs() ([]string, error) {
	return nil, errNoRtmidi
}

// ListenPort sends note events from the first MIDI input whose name contains name until ctx is done.
func ListenPort(ctx context.Context, name string, out chan<- Event) error {
	return errNoRtmidi
}
