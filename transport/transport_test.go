package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/robmorgan/steppatron/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferDevice struct {
	bytes.Buffer
	writes [][]byte
	closed bool
}

func (b *bufferDevice) Write(p []byte) (int, error) {
	b.writes = append(b.writes, append([]byte(nil), p...))
	return b.Buffer.Write(p)
}

func (b *bufferDevice) Close() error {
	b.closed = true
	return nil
}

type shortDevice struct{}

func (shortDevice) Write(p []byte) (int, error) { return len(p) - 1, nil }
func (shortDevice) Close() error                { return nil }

type brokenDevice struct{}

func (brokenDevice) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }
func (brokenDevice) Close() error              { return nil }

func TestLinkWritesOneRecordPerCommand(t *testing.T) {
	t.Parallel()

	dev := &bufferDevice{}
	l := NewLink("test", dev)

	require.NoError(t, l.Send(command.Play(0, 60)))
	require.NoError(t, l.Send(command.Stop(3)))
	assert.Equal(t, [][]byte{{0, 60}, {3, 0xFF}}, dev.writes)

	require.NoError(t, l.Close())
	assert.True(t, dev.closed)
}

func TestLinkRejectsInvalidNote(t *testing.T) {
	t.Parallel()

	dev := &bufferDevice{}
	l := NewLink("test", dev)

	var pe *command.ProtocolError
	require.True(t, errors.As(l.Send(command.Play(0, 5)), &pe))
	assert.Empty(t, dev.writes)
}

func TestLinkTransportErrors(t *testing.T) {
	t.Parallel()

	var te *TransportError

	err := NewLink("short", shortDevice{}).Send(command.Play(0, 60))
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "write", te.Op)

	err = NewLink("broken", brokenDevice{}).Send(command.Play(0, 60))
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestLinkStatus(t *testing.T) {
	t.Parallel()

	dev := &bufferDevice{}
	dev.Buffer.Write([]byte{0, 60, 1, 0xFF})
	l := NewLink("test", dev)

	status, err := l.Status(2)
	require.NoError(t, err)
	assert.Equal(t, []command.Status{{Actuator: 0, Note: 60}, {Actuator: 1, Note: 0xFF}}, status)

	_, err = l.Status(1)
	var te *TransportError
	require.True(t, errors.As(err, &te))

	_, err = NewLink("broken", brokenDevice{}).Status(1)
	require.True(t, errors.As(err, &te))
}

func TestServeDropsMalformedRecords(t *testing.T) {
	t.Parallel()

	in := bytes.NewReader([]byte{
		0, 60,
		1, 5, // note out of range
		1, 64,
		0, 0xFF,
	})
	rec := &command.Recorder{}

	require.NoError(t, Serve(context.Background(), in, rec))
	assert.Equal(t, []command.Command{command.Play(0, 60), command.Play(1, 64), command.Stop(0)}, rec.Commands)
}

func TestServePartialRecord(t *testing.T) {
	t.Parallel()

	rec := &command.Recorder{}
	err := Serve(context.Background(), bytes.NewReader([]byte{0, 60, 1}), rec)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Len(t, rec.Commands, 1)
}

func TestServeStopsOnSinkFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	sink := command.SinkFunc(func(command.Command) error { return boom })
	err := Serve(context.Background(), bytes.NewReader([]byte{0, 60, 0, 62}), sink)
	require.ErrorIs(t, err, boom)
}

func TestServeCancel(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, r, &command.Recorder{})
	}()
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
