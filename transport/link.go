package transport

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/logger"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// Device is the byte channel to a remote driver, e.g. a serial port or a character device.
type Device interface {
	io.Writer
	io.Closer
}

// Link sends commands to a remote driver as 2-byte records, one write per record.
type Link struct {
	mu   sync.Mutex
	dev  Device
	name string
	log  *logrus.Entry
}

// NewLink wraps an open device.
func NewLink(name string, dev Device) *Link {
	return &Link{
		dev:  dev,
		name: name,
		log:  logger.GetProjectLogger().WithFields(logrus.Fields{"component": "transport", "device": name}),
	}
}

// OpenSerial opens a serial port to a remote driver.
func OpenSerial(name string, baud int) (*Link, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, &TransportError{Op: "open " + name, Err: err}
	}
	l := NewLink(name, p)
	l.log.WithField("baud", baud).Info("Serial port opened")
	return l, nil
}

// OpenDevice opens a driver's character device for writing records and reading status.
func OpenDevice(path string) (*Link, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, &TransportError{Op: "open " + path, Err: err}
	}
	l := NewLink(path, f)
	l.log.Info("Device opened")
	return l, nil
}

// Send implements command.Sink.
func (l *Link) Send(c command.Command) error {
	record, err := c.MarshalBinary()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.dev.Write(record)
	if err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if n != len(record) {
		return &TransportError{Op: "write", Err: fmt.Errorf("short write: %d of %d bytes", n, len(record))}
	}
	l.log.WithFields(logrus.Fields{"actuator": c.Actuator, "note": c.Note}).Debug("Record sent")
	return nil
}

// Status reads one status record per actuator from the device, when it supports reading.
func (l *Link) Status(actuators int) ([]command.Status, error) {
	r, ok := l.dev.(io.Reader)
	if !ok {
		return nil, &TransportError{Op: "status", Err: fmt.Errorf("%s is write-only", l.name)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return ReadStatus(r, actuators)
}

// Close closes the device.
func (l *Link) Close() error {
	l.log.Info("Closing link")
	return l.dev.Close()
}

// ReadStatus reads exactly n status records from r.
func ReadStatus(r io.Reader, n int) ([]command.Status, error) {
	buf := make([]byte, n*command.RecordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &TransportError{Op: "read status", Err: err}
	}
	return command.DecodeStatus(buf)
}
