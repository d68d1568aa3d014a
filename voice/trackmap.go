package voice

import (
	"sync"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/notetable"
	"github.com/sirupsen/logrus"
)

// TrackMap statically routes each melodic track of a file to its own actuator.
type TrackMap struct {
	mu       sync.Mutex
	actuator map[int]int
	notes    []uint8
}

// NewTrackMap assigns actuators 0, 1, 2... to the melodic tracks in ascending track order. Melodic tracks
// beyond the number of actuators stay unmapped and their notes are dropped.
func NewTrackMap(melodic []bool, actuators int) *TrackMap {
	logger := logger.GetProjectLogger()

	m := &TrackMap{actuator: make(map[int]int), notes: offs(actuators)}
	next := 0
	for track, ok := range melodic {
		if !ok {
			continue
		}
		if next >= actuators {
			logger.WithFields(logrus.Fields{"track": track, "actuators": actuators}).
				Warn("More melodic tracks than actuators, track will not be played")
			continue
		}
		m.actuator[track] = next
		next++
	}
	return m
}

// Actuator returns the actuator a track is routed to.
func (m *TrackMap) Actuator(track int) (int, bool) {
	idx, ok := m.actuator[track]
	return idx, ok
}

// NoteOn implements Router.
func (m *TrackMap) NoteOn(track int, note uint8) (command.Command, error) {
	if !notetable.Valid(note) {
		return command.Command{}, ErrNoteOutOfRange
	}
	idx, ok := m.actuator[track]
	if !ok {
		return command.Command{}, ErrUnmappedTrack
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[idx] = note
	return command.Play(uint8(idx), note), nil
}

// NoteOff implements Router. Only the note the track's actuator is currently sounding is released.
func (m *TrackMap) NoteOff(track int, note uint8) (command.Command, bool) {
	idx, ok := m.actuator[track]
	if !ok {
		return command.Command{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notes[idx] != note || note == command.Off {
		return command.Command{}, false
	}
	m.notes[idx] = command.Off
	return command.Stop(uint8(idx)), true
}

// Silence implements Router.
func (m *TrackMap) Silence() []command.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return silence(m.notes)
}

// Actuators implements Router.
func (m *TrackMap) Actuators() int {
	return len(m.notes)
}
