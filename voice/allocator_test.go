package voice

import (
	"testing"

	"github.com/robmorgan/steppatron/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignPrefersFree(t *testing.T) {
	t.Parallel()

	a := NewAllocator(3)

	idx, err := a.Assign(60)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = a.Assign(64)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	// releasing the first actuator makes it the preferred free one again
	_, ok := a.Release(60)
	require.True(t, ok)
	idx, err = a.Assign(90)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestStealNearestPitch(t *testing.T) {
	t.Parallel()

	a := NewAllocator(2)
	_, _ = a.Assign(60)
	_, _ = a.Assign(64)

	c, err := a.NoteOn(0, 67)
	require.NoError(t, err)
	assert.Equal(t, command.Play(1, 67), c)
	assert.Equal(t, []uint8{60, 67}, a.Sounding())
}

func TestStealTieGoesToLowestIndex(t *testing.T) {
	t.Parallel()

	a := NewAllocator(2)
	_, _ = a.Assign(60)
	_, _ = a.Assign(64)

	idx, err := a.Assign(62)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestAssignRefreshesSoundingNote(t *testing.T) {
	t.Parallel()

	a := NewAllocator(3)
	_, _ = a.Assign(60)
	_, _ = a.Assign(64)

	idx, err := a.Assign(64)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []uint8{60, 64, command.Off}, a.Sounding())
}

func TestReleaseUnknownNote(t *testing.T) {
	t.Parallel()

	a := NewAllocator(2)
	_, _ = a.Assign(60)

	_, ok := a.NoteOff(0, 61)
	assert.False(t, ok)
	assert.Equal(t, []uint8{60, command.Off}, a.Sounding())

	c, ok := a.NoteOff(0, 60)
	require.True(t, ok)
	assert.Equal(t, command.Stop(0), c)
}

func TestAssignRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	a := NewAllocator(1)
	_, err := a.Assign(20)
	require.ErrorIs(t, err, ErrNoteOutOfRange)
	_, err = a.Assign(109)
	require.ErrorIs(t, err, ErrNoteOutOfRange)

	_, err = NewAllocator(0).Assign(60)
	require.ErrorIs(t, err, ErrNoActuators)
}

func TestAllocatorSilence(t *testing.T) {
	t.Parallel()

	a := NewAllocator(3)
	_, _ = a.Assign(60)
	_, _ = a.Assign(70)

	cmds := a.Silence()
	assert.Equal(t, []command.Command{command.Stop(0), command.Stop(1), command.Stop(2)}, cmds)
	assert.Equal(t, []uint8{command.Off, command.Off, command.Off}, a.Sounding())
	assert.Equal(t, 3, a.Actuators())
}

func TestShutdownContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	a := NewAllocator(3)
	var sent []command.Command
	failed := false
	sink := command.SinkFunc(func(c command.Command) error {
		sent = append(sent, c)
		if !failed {
			failed = true
			return assert.AnError
		}
		return nil
	})

	err := Shutdown(a, sink)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []command.Command{command.Stop(0), command.Stop(1), command.Stop(2)}, sent)
}
