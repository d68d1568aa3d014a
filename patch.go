package main

import (
	"fmt"

	"github.com/robmorgan/steppatron/command"
	"github.com/robmorgan/steppatron/config"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/midifile"
	"github.com/robmorgan/steppatron/notetable"
	"github.com/robmorgan/steppatron/pin"
	"github.com/robmorgan/steppatron/stepper"
	"github.com/robmorgan/steppatron/transport"
	"github.com/robmorgan/steppatron/voice"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// output is where commands are delivered. driver is only set for local actuators.
type output struct {
	sink   command.Sink
	driver *stepper.Driver
	close  func() error
}

// openOutput patches the configured actuators to local pins or opens the link to a remote driver.
func openOutput(cfg config.SteppatronConfig, clk clock.WithDelayedExecution) (*output, error) {
	switch cfg.Output.Kind {
	case config.OutputSerial:
		link, err := transport.OpenSerial(cfg.Output.Device, cfg.Output.Baud)
		if err != nil {
			return nil, err
		}
		return &output{sink: link, close: link.Close}, nil
	case config.OutputDevice:
		link, err := transport.OpenDevice(cfg.Output.Device)
		if err != nil {
			return nil, err
		}
		return &output{sink: link, close: link.Close}, nil
	}

	var pins pin.Controller
	closePins := func() error { return nil }
	switch cfg.Output.Pins {
	case config.PinsSysfs:
		sysfs := pin.NewSysfs(pin.DefaultSysfsRoot)
		pins, closePins = sysfs, sysfs.Close
	default:
		pins = pin.NewSim()
	}

	driver, err := patchActuators(cfg, pins, clk)
	if err != nil {
		closePins()
		return nil, err
	}
	return &output{
		sink:   driver,
		driver: driver,
		close: func() error {
			err := driver.Close()
			if perr := closePins(); err == nil {
				err = perr
			}
			return err
		},
	}, nil
}

// patchActuators builds the local driver for the configured wiring.
func patchActuators(cfg config.SteppatronConfig, pins pin.Controller, clk clock.WithDelayedExecution) (*stepper.Driver, error) {
	sustain, err := cfg.GetMaxSustain()
	if err != nil {
		return nil, err
	}

	patches := make([]stepper.Patch, len(cfg.Actuators))
	for i, a := range cfg.Actuators {
		patches[i] = stepper.Patch{StepPin: a.StepPin, DirPin: a.DirPin}
	}
	table := notetable.New(sustain)
	driver, err := stepper.NewDriver(pins, table, clk, patches...)
	if err != nil {
		return nil, err
	}
	logger.GetProjectLogger().WithFields(logrus.Fields{"actuators": driver.Count(), "max_sustain": table.MaxSustain()}).
		Info("Actuators patched")
	driver.SetRamp(stepper.Ramp{Steps: cfg.Ramp.Steps, StartHz: cfg.Ramp.StartHz})
	return driver, nil
}

// newRouter picks how the tracks of f reach the actuators.
func newRouter(cfg config.SteppatronConfig, f *midifile.File) (voice.Router, error) {
	switch cfg.Allocation {
	case config.AllocationSteal:
		return voice.NewAllocator(len(cfg.Actuators)), nil
	case config.AllocationTracks:
		melodic := make([]bool, len(f.Tracks))
		for i, t := range f.Tracks {
			melodic[i] = t.HasNotes()
		}
		return voice.NewTrackMap(melodic, len(cfg.Actuators)), nil
	}
	return nil, fmt.Errorf("unknown allocation %q", cfg.Allocation)
}
