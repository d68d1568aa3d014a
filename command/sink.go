package command

// Sink accepts commands for the actuators, e.g. the local driver or a transport link.
type Sink interface {
	Send(c Command) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(c Command) error

// Send calls f(c).
func (f SinkFunc) Send(c Command) error {
	return f(c)
}

// Recorder is a Sink that keeps every command it receives.
type Recorder struct {
	Commands []Command
}

// Send records c.
func (r *Recorder) Send(c Command) error {
	r.Commands = append(r.Commands, c)
	return nil
}
