package livein

import (
	"context"
	"errors"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/voice"
	"github.com/sirupsen/logrus"
)

// Play routes live events to the actuators until events is closed, ctx is done or a command cannot be
// delivered. Every actuator is silenced before it returns.
func Play(ctx context.Context, events <-chan Event, router voice.Router, sink command.Sink) (err error) {
	logger := logger.GetProjectLogger().WithField("component", "livein")
	logger.WithField("actuators", router.Actuators()).Info("Live input started")

	defer func() {
		logger.Info("Silencing actuators")
		if serr := voice.Shutdown(router, sink); serr != nil && err == nil {
			err = serr
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := handle(ev, router, sink, logger); err != nil {
				return err
			}
		}
	}
}

func handle(ev Event, router voice.Router, sink command.Sink, logger *logrus.Entry) error {
	logger.Debug(ev.String())

	if !ev.On {
		if c, ok := router.NoteOff(0, ev.Note); ok {
			return sink.Send(c)
		}
		return nil
	}

	c, err := router.NoteOn(0, ev.Note)
	if errors.Is(err, voice.ErrNoteOutOfRange) {
		logger.WithField("note", ev.Note).Warn("Note outside playable range")
		return nil
	}
	if err != nil {
		return err
	}
	return sink.Send(c)
}
