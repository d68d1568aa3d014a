package livein

import (
	"context"
	"fmt"
	"net"

	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/steppatron/logger"
	"github.com/sirupsen/logrus"
)

// OSC addresses understood by the listener. /note takes a note and a velocity (zero releases the note);
// /note/on and /note/off take a note.
const (
	OSCNote    = "/note"
	OSCNoteOn  = "/note/on"
	OSCNoteOff = "/note/off"
)

// ListenOSC receives OSC note messages on a UDP address until ctx is done.
func ListenOSC(ctx context.Context, addr string, out chan<- Event) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	return ServeOSC(ctx, conn, out)
}

// ServeOSC receives OSC note messages on conn until ctx is done. conn is closed on return.
func ServeOSC(ctx context.Context, conn net.PacketConn, out chan<- Event) error {
	logger := logger.GetProjectLogger().WithFields(logrus.Fields{"component": "osc", "addr": conn.LocalAddr()})

	d := osc.NewStandardDispatcher()
	handler := func(msg *osc.Message) {
		ev, err := oscEvent(msg)
		if err != nil {
			logger.Warnf("Ignoring %s: %v", msg, err)
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}
	for _, addr := range []string{OSCNote, OSCNoteOn, OSCNoteOff} {
		if err := d.AddMsgHandler(addr, handler); err != nil {
			conn.Close()
			return err
		}
	}

	server := &osc.Server{Dispatcher: d}
	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(conn)
	}()
	logger.Info("Listening for OSC")

	select {
	case <-ctx.Done():
		conn.Close()
		<-errc
		return ctx.Err()
	case err := <-errc:
		conn.Close()
		return err
	}
}

func oscEvent(msg *osc.Message) (Event, error) {
	if len(msg.Arguments) == 0 {
		return Event{}, fmt.Errorf("missing note argument")
	}
	note, err := oscInt(msg.Arguments[0])
	if err != nil {
		return Event{}, err
	}

	switch msg.Address {
	case OSCNoteOn:
		return Event{On: true, Note: note, Velocity: 127}, nil
	case OSCNoteOff:
		return Event{Note: note}, nil
	}

	if len(msg.Arguments) < 2 {
		return Event{}, fmt.Errorf("missing velocity argument")
	}
	vel, err := oscInt(msg.Arguments[1])
	if err != nil {
		return Event{}, err
	}
	return Event{On: vel > 0, Note: note, Velocity: vel}, nil
}

func oscInt(arg interface{}) (uint8, error) {
	var v int64
	switch a := arg.(type) {
	case int32:
		v = int64(a)
	case int64:
		v = a
	case float32:
		v = int64(a)
	case float64:
		v = int64(a)
	default:
		return 0, fmt.Errorf("unsupported argument %T", arg)
	}
	if v < 0 || v > 127 {
		return 0, fmt.Errorf("argument %d outside 0..127", v)
	}
	return uint8(v), nil
}
