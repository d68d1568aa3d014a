//go:build rtmidi

package livein

import (
	"context"
	"fmt"
	"strings"

	"github.com/robmorgan/steppatron/logger"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ListInputs returns the names of the MIDI input ports.
func ListInputs() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// ListenPort sends note events from the first MIDI input whose name contains name until ctx is done.
func ListenPort(ctx context.Context, name string, out chan<- Event) error {
	logger := logger.GetProjectLogger().WithField("component", "rtmidi")

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("rtmididrv: %w", err)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return err
	}
	var port drivers.In
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			port = in
			break
		}
	}
	if port == nil {
		return fmt.Errorf("no MIDI input matching %q", name)
	}
	if err := port.Open(); err != nil {
		return fmt.Errorf("open %q: %w", port.String(), err)
	}
	defer port.Close()

	errc := make(chan error, 1)
	stop, err := midi.ListenTo(port, func(msg midi.Message, _ int32) {
		if ev, ok := FromMessage(msg); ok {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}, midi.HandleError(func(err error) {
		select {
		case errc <- err:
		default:
		}
	}))
	if err != nil {
		return fmt.Errorf("listen %q: %w", port.String(), err)
	}
	defer stop()
	logger.WithField("port", port.String()).Info("Listening for MIDI")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errc:
		return err
	}
}
