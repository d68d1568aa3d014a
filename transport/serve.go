package transport

import (
	"context"
	"errors"
	"io"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
	"github.com/sirupsen/logrus"
)

// Serve reads records from r and applies them to sink until ctx is done or r fails. Malformed records are
// dropped and logged; the session continues. A clean end of stream returns nil.
func Serve(ctx context.Context, r io.Reader, sink command.Sink) error {
	logger := logger.GetProjectLogger().WithField("component", "serve")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(records)
		for {
			buf := make([]byte, command.RecordSize)
			if _, err := io.ReadFull(r, buf); err != nil {
				errc <- err
				return
			}
			select {
			case records <- buf:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Serve shutdown")
			return ctx.Err()
		case rec, ok := <-records:
			if !ok {
				err := <-errc
				if errors.Is(err, io.EOF) {
					return nil
				}
				return &TransportError{Op: "read", Err: err}
			}
			c, err := command.Decode(rec)
			if err == nil {
				err = sink.Send(c)
			}
			var pe *command.ProtocolError
			switch {
			case err == nil:
			case errors.As(err, &pe):
				logger.WithFields(logrus.Fields{"record": rec}).Warnf("Dropped record: %v", pe)
			default:
				return err
			}
		}
	}
}
