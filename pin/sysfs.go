package pin

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// DefaultSysfsRoot is where the Linux kernel exposes the legacy GPIO interface.
const DefaultSysfsRoot = "/sys/class/gpio"

// Sysfs drives GPIO lines through the kernel's sysfs interface. Value files are kept open between writes.
type Sysfs struct {
	root   string
	mu     sync.Mutex
	values map[int]*os.File
}

// NewSysfs returns a Controller rooted at root, usually DefaultSysfsRoot.
func NewSysfs(root string) *Sysfs {
	return &Sysfs{root: root, values: make(map[int]*os.File)}
}

func (s *Sysfs) pinDir(pin int) string {
	return filepath.Join(s.root, fmt.Sprintf("gpio%d", pin))
}

func (s *Sysfs) export(pin int) error {
	if _, err := os.Stat(s.pinDir(pin)); err == nil {
		return nil
	}
	return os.WriteFile(filepath.Join(s.root, "export"), []byte(strconv.Itoa(pin)), 0o200)
}

// SetDirection implements Controller. The line is exported on first use.
func (s *Sysfs) SetDirection(pin int, dir Direction) error {
	if err := s.export(pin); err != nil {
		return fmt.Errorf("export gpio %d: %w", pin, err)
	}
	if err := os.WriteFile(filepath.Join(s.pinDir(pin), "direction"), []byte(dir.String()), 0o644); err != nil {
		return fmt.Errorf("set gpio %d direction: %w", pin, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.values[pin]; ok {
		f.Close()
		delete(s.values, pin)
	}
	flag := os.O_RDONLY
	if dir == Output {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(filepath.Join(s.pinDir(pin), "value"), flag, 0)
	if err != nil {
		return fmt.Errorf("open gpio %d value: %w", pin, err)
	}
	s.values[pin] = f
	return nil
}

func (s *Sysfs) value(pin int) (*os.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.values[pin]
	if !ok {
		return nil, ErrNotOutput{Pin: pin}
	}
	return f, nil
}

// SetHigh implements Controller.
func (s *Sysfs) SetHigh(pin int) error {
	return s.write(pin, "1")
}

// SetLow implements Controller.
func (s *Sysfs) SetLow(pin int) error {
	return s.write(pin, "0")
}

func (s *Sysfs) write(pin int, v string) error {
	f, err := s.value(pin)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt([]byte(v), 0); err != nil {
		return fmt.Errorf("write gpio %d: %w", pin, err)
	}
	return nil
}

// Read implements Controller.
func (s *Sysfs) Read(pin int) (bool, error) {
	f, err := s.value(pin)
	if err != nil {
		return false, err
	}
	buf := make([]byte, 2)
	n, err := f.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return false, fmt.Errorf("read gpio %d: %w", pin, err)
	}
	return strings.TrimSpace(string(buf[:n])) == "1", nil
}

// Close releases the open value files.
func (s *Sysfs) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for pin, f := range s.values {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.values, pin)
	}
	return first
}
