package livein

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestFromMessage(t *testing.T) {
	t.Parallel()

	ev, ok := FromMessage(midi.NoteOn(2, 60, 100))
	require.True(t, ok)
	assert.Equal(t, Event{On: true, Channel: 2, Note: 60, Velocity: 100}, ev)

	ev, ok = FromMessage(midi.NoteOff(0, 61))
	require.True(t, ok)
	assert.Equal(t, Event{Note: 61}, ev)

	ev, ok = FromMessage(midi.NoteOn(0, 62, 0))
	require.True(t, ok)
	assert.False(t, ev.On)

	_, ok = FromMessage(midi.ControlChange(0, 7, 100))
	assert.False(t, ok)
}

func collect(t *testing.T, in []byte) []Event {
	t.Helper()
	out := make(chan Event, 16)
	require.NoError(t, ReadStream(context.Background(), bytes.NewReader(in), out))
	close(out)

	var evs []Event
	for ev := range out {
		evs = append(evs, ev)
	}
	return evs
}

func TestReadStream(t *testing.T) {
	t.Parallel()

	evs := collect(t, []byte{
		0x90, 60, 100,
		62, 90, // running status
		0xF8, // clock tick inside running status
		64, 0, // note on with zero velocity
		0xF0, 1, 2, 3, 0xF7, // sysex
		0xB0, 7, 100, // control change
		0x80, 60, 0,
	})

	assert.Equal(t, []Event{
		{On: true, Note: 60, Velocity: 100},
		{On: true, Note: 62, Velocity: 90},
		{Note: 64},
		{Note: 60},
	}, evs)
}

func TestReadStreamSkipsLeadingData(t *testing.T) {
	t.Parallel()

	evs := collect(t, []byte{60, 100, 0x91, 70, 1})
	assert.Equal(t, []Event{{On: true, Channel: 1, Note: 70, Velocity: 1}}, evs)
}

func TestOSCEvent(t *testing.T) {
	t.Parallel()

	ev, err := oscEvent(osc.NewMessage(OSCNote, int32(60), int32(100)))
	require.NoError(t, err)
	assert.Equal(t, Event{On: true, Note: 60, Velocity: 100}, ev)

	ev, err = oscEvent(osc.NewMessage(OSCNote, int32(60), int32(0)))
	require.NoError(t, err)
	assert.False(t, ev.On)

	ev, err = oscEvent(osc.NewMessage(OSCNoteOn, float32(64)))
	require.NoError(t, err)
	assert.Equal(t, Event{On: true, Note: 64, Velocity: 127}, ev)

	ev, err = oscEvent(osc.NewMessage(OSCNoteOff, int32(64)))
	require.NoError(t, err)
	assert.Equal(t, Event{Note: 64}, ev)

	_, err = oscEvent(osc.NewMessage(OSCNote, int32(60)))
	require.Error(t, err)
	_, err = oscEvent(osc.NewMessage(OSCNoteOn, "sixty"))
	require.Error(t, err)
	_, err = oscEvent(osc.NewMessage(OSCNoteOn, int32(300)))
	require.Error(t, err)
}

func TestServeOSC(t *testing.T) {
	t.Parallel()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- ServeOSC(ctx, conn, out)
	}()

	client := osc.NewClient("127.0.0.1", port)
	var got Event
	require.Eventually(t, func() bool {
		_ = client.Send(osc.NewMessage(OSCNoteOn, int32(72)))
		select {
		case got = <-out:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 50*time.Millisecond)
	assert.Equal(t, uint8(72), got.Note)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestPlay(t *testing.T) {
	t.Parallel()

	events := make(chan Event, 8)
	events <- Event{On: true, Note: 60}
	events <- Event{On: true, Note: 64}
	events <- Event{On: true, Note: 67}
	events <- Event{On: true, Note: 10}
	events <- Event{Note: 61}
	events <- Event{Note: 60}
	close(events)

	rec := &command.Recorder{}
	require.NoError(t, Play(context.Background(), events, voice.NewAllocator(2), rec))

	assert.Equal(t, []command.Command{
		command.Play(0, 60),
		command.Play(1, 64),
		command.Play(1, 67), // steals the nearest pitch
		command.Stop(0),
		command.Stop(0), command.Stop(1), // shutdown
	}, rec.Commands)
}

func TestPlayStopsOnTransportError(t *testing.T) {
	t.Parallel()

	lost := errors.New("lost")
	var sent []command.Command
	sink := command.SinkFunc(func(c command.Command) error {
		sent = append(sent, c)
		if !c.IsOff() {
			return lost
		}
		return nil
	})

	events := make(chan Event, 2)
	events <- Event{On: true, Note: 60}
	events <- Event{On: true, Note: 62}

	err := Play(context.Background(), events, voice.NewAllocator(2), sink)
	require.ErrorIs(t, err, lost)
	assert.Equal(t, []command.Command{command.Play(0, 60), command.Stop(0), command.Stop(1)}, sent)
}

func TestPlayCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &command.Recorder{}
	err := Play(ctx, make(chan Event), voice.NewAllocator(1), rec)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []command.Command{command.Stop(0)}, rec.Commands)
}
