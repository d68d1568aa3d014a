package pin

import "sync"

// Sim is an in-memory Controller that records levels and counts transitions.
type Sim struct {
	mu      sync.Mutex
	dirs    map[int]Direction
	levels  map[int]bool
	toggles map[int]int
}

// NewSim returns a Sim with every line an input at low level.
func NewSim() *Sim {
	return &Sim{
		dirs:    make(map[int]Direction),
		levels:  make(map[int]bool),
		toggles: make(map[int]int),
	}
}

// SetDirection implements Controller.
func (s *Sim) SetDirection(pin int, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[pin] = dir
	return nil
}

// SetHigh implements Controller.
func (s *Sim) SetHigh(pin int) error {
	return s.set(pin, true)
}

// SetLow implements Controller.
func (s *Sim) SetLow(pin int) error {
	return s.set(pin, false)
}

func (s *Sim) set(pin int, level bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirs[pin] != Output {
		return ErrNotOutput{Pin: pin}
	}
	if s.levels[pin] != level {
		s.toggles[pin]++
	}
	s.levels[pin] = level
	return nil
}

// Read implements Controller.
func (s *Sim) Read(pin int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin], nil
}

// Toggles returns how many level transitions pin has seen.
func (s *Sim) Toggles(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggles[pin]
}

// Direction returns the configured direction of pin.
func (s *Sim) Direction(pin int) Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[pin]
}
