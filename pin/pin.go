package pin

import "fmt"

// Direction of a GPIO line.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "out"
	}
	return "in"
}

// Controller drives the GPIO lines the actuators are wired to.
type Controller interface {
	SetDirection(pin int, dir Direction) error
	SetHigh(pin int) error
	SetLow(pin int) error
	Read(pin int) (bool, error)
}

// Set drives pin to level.
func Set(c Controller, pin int, level bool) error {
	if level {
		return c.SetHigh(pin)
	}
	return c.SetLow(pin)
}

// ErrNotOutput is returned when writing a line that was not configured as an output.
type ErrNotOutput struct {
	Pin int
}

func (e ErrNotOutput) Error() string {
	return fmt.Sprintf("gpio %d is not configured as an output", e.Pin)
}
