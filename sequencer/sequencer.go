package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/midifile"
	"github.com/robmorgan/steppatron/rhythm"
	"github.com/robmorgan/steppatron/voice"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// Cursor is the playback position within one track.
type Cursor struct {
	// Index of the next event to dispatch; len(events) once the track has ended.
	Index int

	// Pending is the number of ticks left before the event at Index is due.
	Pending uint32
}

// Sequencer plays a decoded file by dispatching each event at its absolute deadline.
type Sequencer struct {
	file    *midifile.File
	cursors []Cursor
	tempo   *rhythm.Tempo
	router  voice.Router
	sink    command.Sink
	clock   clock.Clock
	log     *logrus.Entry

	started  bool
	done     bool
	deadline time.Time
	tick     uint64
	finished int
}

// New prepares f for playback. Every cursor starts at its track's first event.
func New(f *midifile.File, router voice.Router, sink command.Sink, clk clock.Clock) *Sequencer {
	s := &Sequencer{
		file:    f,
		cursors: make([]Cursor, len(f.Tracks)),
		tempo:   rhythm.NewTempo(f.Header.TicksPerQuarter()),
		router:  router,
		sink:    sink,
		clock:   clk,
		log:     logger.GetProjectLogger().WithField("component", "sequencer"),
	}
	for i, t := range f.Tracks {
		if len(t.Events) == 0 {
			s.finished++
			continue
		}
		s.cursors[i].Pending = t.Events[0].Delta
	}
	return s
}

// Tempo returns the live tempo state.
func (s *Sequencer) Tempo() *rhythm.Tempo {
	return s.tempo
}

// Tick returns the absolute tick of the events being dispatched.
func (s *Sequencer) Tick() uint64 {
	return s.tick
}

// Done reports whether every track has ended.
func (s *Sequencer) Done() bool {
	return s.done
}

// Cursors returns a copy of the track cursors.
func (s *Sequencer) Cursors() []Cursor {
	return append([]Cursor(nil), s.cursors...)
}

// Run plays until every track has ended, ctx is cancelled, or a command cannot be delivered. Whatever the
// reason, every actuator is sent an OFF, in ascending order, before Run returns.
func (s *Sequencer) Run(ctx context.Context) (err error) {
	s.log.WithFields(logrus.Fields{
		"format": s.file.Header.Format,
		"tracks": len(s.file.Tracks),
		"ppq":    s.file.Header.TicksPerQuarter(),
	}).Info("Playback started")

	defer func() {
		if serr := s.Shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()

	for {
		if ctx.Err() != nil {
			s.log.WithField("position", s.tempo.GetPosition(s.tick).GetMarker()).Info("Playback interrupted")
			return ctx.Err()
		}
		more, stepErr := s.Step(ctx)
		if stepErr != nil {
			return stepErr
		}
		if !more {
			s.log.WithFields(logrus.Fields{"ticks": s.tick, "tracks_ended": s.finished}).Info("Playback finished")
			return nil
		}
	}
}

// Step waits for the current deadline, dispatches every due event and advances the deadline by the ticks to
// the next due event. The first call dispatches immediately. It returns false once every track has ended.
func (s *Sequencer) Step(ctx context.Context) (bool, error) {
	if s.done {
		return false, nil
	}
	if !s.started {
		s.started = true
		s.deadline = s.clock.Now()
	} else if err := s.wait(ctx); err != nil {
		return false, err
	}

	delta, more, err := s.dispatch()
	if err != nil {
		return false, err
	}
	if !more {
		s.done = true
		return false, nil
	}
	s.deadline = s.deadline.Add(s.tempo.TicksToDuration(delta))
	return true, nil
}

// wait blocks until the absolute deadline or until ctx is done.
func (s *Sequencer) wait(ctx context.Context) error {
	d := s.deadline.Sub(s.clock.Now())
	if d <= 0 {
		return nil
	}
	t := s.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}

// dispatch handles every event whose pending delta is zero, in track order, then subtracts the smallest
// remaining delta from every live cursor and returns it.
func (s *Sequencer) dispatch() (uint32, bool, error) {
	for i := range s.cursors {
		c := &s.cursors[i]
		events := s.file.Tracks[i].Events
		for c.Index < len(events) && c.Pending == 0 {
			ev := events[c.Index]
			c.Index++
			if err := s.handle(i, ev); err != nil {
				return 0, false, err
			}
			if ev.IsEndOfTrack() {
				c.Index = len(events)
			}
			if c.Index < len(events) {
				c.Pending = events[c.Index].Delta
			} else {
				s.finished++
			}
		}
	}

	next := uint32(math.MaxUint32)
	live := false
	for i, c := range s.cursors {
		if c.Index < len(s.file.Tracks[i].Events) && c.Pending < next {
			next = c.Pending
			live = true
		}
	}
	if !live {
		return 0, false, nil
	}
	for i := range s.cursors {
		if s.cursors[i].Index < len(s.file.Tracks[i].Events) {
			s.cursors[i].Pending -= next
		}
	}
	s.tick += uint64(next)
	return next, true, nil
}

func (s *Sequencer) handle(track int, ev midifile.Event) error {
	log := s.log.WithFields(logrus.Fields{"track": track, "tick": s.tick})

	switch ev.Kind {
	case midifile.KindMeta:
		s.handleMeta(track, ev, log)
		return nil
	case midifile.KindSysEx:
		log.Debug("Ignoring sysex event")
		return nil
	}

	note, _, ok := ev.Note()
	if !ok {
		log.WithField("type", fmt.Sprintf("%#02x", ev.Type())).Debug("Ignoring channel event")
		return nil
	}

	if ev.IsNoteOff() {
		if c, ok := s.router.NoteOff(track, note); ok {
			return s.send(c)
		}
		return nil
	}

	c, err := s.router.NoteOn(track, note)
	switch {
	case errors.Is(err, voice.ErrNoteOutOfRange), errors.Is(err, voice.ErrUnmappedTrack):
		log.WithField("note", note).Debugf("Note dropped: %v", err)
		return nil
	case err != nil:
		return err
	}
	return s.send(c)
}

func (s *Sequencer) handleMeta(track int, ev midifile.Event, log *logrus.Entry) {
	switch ev.MetaType {
	case midifile.MetaTempo:
		us, ok := ev.Tempo()
		if !ok {
			log.Warn("Malformed tempo event")
			return
		}
		if track != 0 {
			log.Warn("Tempo change outside the tempo track")
		}
		s.tempo.SetTempo(us)
		log.WithField("tempo", s.tempo.String()).Info("Tempo changed")
	case midifile.MetaTimeSignature:
		num, pow, ok := ev.TimeSignature()
		if !ok {
			log.Warn("Malformed time signature event")
			return
		}
		if track != 0 {
			log.Warn("Time signature change outside the tempo track")
		}
		if !s.tempo.SetTimeSignature(num, pow) {
			log.WithFields(logrus.Fields{"numerator": num, "denominator_pow": pow}).
				Warn("Malformed time signature event")
			return
		}
		log.WithField("tempo", s.tempo.String()).Info("Time signature changed")
	case midifile.MetaTrackName:
		if track == 0 {
			log.Infof("Sequence: %s", ev.Data)
		} else {
			log.Infof("Track: %s", ev.Data)
		}
	case midifile.MetaEndOfTrack:
		log.Debug("End of track")
	default:
		log.WithField("meta", fmt.Sprintf("%#02x", ev.MetaType)).Debug("Ignoring meta event")
	}
}

func (s *Sequencer) send(c command.Command) error {
	s.log.WithFields(logrus.Fields{"tick": s.tick, "actuator": c.Actuator, "note": c.Note}).Debug("Dispatch")
	return s.sink.Send(c)
}

// Shutdown sends an OFF to every actuator in ascending order.
func (s *Sequencer) Shutdown() error {
	s.log.Info("Silencing actuators")
	return voice.Shutdown(s.router, s.sink)
}
