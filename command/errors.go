package command

import "fmt"

// ProtocolError reports a malformed command record. The record is dropped and the session continues.
type ProtocolError struct {
	Reason string
	Record []byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s (record % x)", e.Reason, e.Record)
}
