package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robmorgan/steppatron/notetable"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Allocation policies for file playback.
const (
	AllocationTracks = "tracks"
	AllocationSteal  = "steal"
)

// Output kinds.
const (
	OutputLocal  = "local"
	OutputSerial = "serial"
	OutputDevice = "device"
)

// Pin controller kinds for local output.
const (
	PinsSim   = "sim"
	PinsSysfs = "sysfs"
)

// SteppatronConfig represents options that configure the global behavior of the program
type SteppatronConfig struct {
	// Actuators stores the patched actuators, in index order
	Actuators []PatchedActuator `yaml:"actuators"`

	// MaxSustain is how long a note may sound without a new command, e.g. "8s"
	MaxSustain string `yaml:"max_sustain"`

	Ramp RampConfig `yaml:"ramp"`

	// Allocation selects how file tracks reach actuators: "tracks" or "steal"
	Allocation string `yaml:"allocation"`

	Output OutputConfig `yaml:"output"`

	// StatusInterval is how often the actuator table is logged while playing, "0" disables it
	StatusInterval string `yaml:"status_interval"`

	LogLevel string `yaml:"log_level"`
}

// RampConfig configures the motor spin-up ramp. Zero steps disables it.
type RampConfig struct {
	Steps   int     `yaml:"steps"`
	StartHz float64 `yaml:"start_hz"`
}

// OutputConfig selects where commands go.
type OutputConfig struct {
	Kind   string `yaml:"kind"`
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Pins   string `yaml:"pins"`
}

// NewSteppatronConfig creates a SteppatronConfig with reasonable defaults for real usage
func NewSteppatronConfig() SteppatronConfig {
	return SteppatronConfig{
		Actuators:      PatchActuators(),
		MaxSustain:     notetable.DefaultMaxSustain.String(),
		Allocation:     AllocationTracks,
		StatusInterval: "0",
		Output: OutputConfig{
			Kind: OutputLocal,
			Baud: 115200,
			Pins: PinsSim,
		},
		LogLevel: logrus.InfoLevel.String(),
	}
}

// LoadSteppatronConfig reads a YAML file over the defaults and validates the result.
func LoadSteppatronConfig(path string) (SteppatronConfig, error) {
	cfg := NewSteppatronConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c SteppatronConfig) Validate() error {
	if len(c.Actuators) == 0 {
		return fmt.Errorf("at least one actuator must be patched")
	}
	if len(c.Actuators) > 256 {
		return fmt.Errorf("%d actuators patched, at most 256 can be addressed", len(c.Actuators))
	}
	if err := validatePatch(c.Actuators); err != nil {
		return err
	}

	sustain, err := c.GetMaxSustain()
	if err != nil {
		return err
	}
	if sustain <= 0 {
		return fmt.Errorf("max_sustain must be positive, got %s", c.MaxSustain)
	}
	if _, err := c.GetStatusInterval(); err != nil {
		return err
	}
	if c.Ramp.Steps < 0 || c.Ramp.StartHz < 0 {
		return fmt.Errorf("ramp steps and start_hz must not be negative")
	}

	switch c.Allocation {
	case AllocationTracks, AllocationSteal:
	default:
		return fmt.Errorf("unknown allocation %q", c.Allocation)
	}

	switch c.Output.Kind {
	case OutputLocal:
		if c.Output.Pins != PinsSim && c.Output.Pins != PinsSysfs {
			return fmt.Errorf("unknown pin controller %q", c.Output.Pins)
		}
	case OutputSerial, OutputDevice:
		if c.Output.Device == "" {
			return fmt.Errorf("output %q needs a device", c.Output.Kind)
		}
	default:
		return fmt.Errorf("unknown output %q", c.Output.Kind)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// GetMaxSustain parses MaxSustain.
func (c SteppatronConfig) GetMaxSustain() (time.Duration, error) {
	d, err := time.ParseDuration(c.MaxSustain)
	if err != nil {
		return 0, fmt.Errorf("max_sustain: %w", err)
	}
	return d, nil
}

// GetStatusInterval parses StatusInterval.
func (c SteppatronConfig) GetStatusInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.StatusInterval)
	if err != nil {
		return 0, fmt.Errorf("status_interval: %w", err)
	}
	return d, nil
}
