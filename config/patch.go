package config

import "fmt"

// NoPin marks an unused line.
const NoPin = -1

// PatchedActuator stores the GPIO wiring of one actuator
type PatchedActuator struct {
	Name    string `yaml:"name"`
	StepPin int    `yaml:"step_pin"`
	DirPin  int    `yaml:"dir_pin"`
}

// UnmarshalYAML defaults the direction pin to unused.
func (p *PatchedActuator) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain PatchedActuator
	raw := plain{DirPin: NoPin}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*p = PatchedActuator(raw)
	return nil
}

// PatchActuators returns the default wiring: four steppers on the Raspberry Pi header.
func PatchActuators() []PatchedActuator {
	return []PatchedActuator{
		// bass
		{Name: "stepper_1", StepPin: 6, DirPin: NoPin},
		{Name: "stepper_2", StepPin: 13, DirPin: NoPin},
		{Name: "stepper_3", StepPin: 19, DirPin: NoPin},
		// lead
		{Name: "stepper_4", StepPin: 26, DirPin: NoPin},
	}
}

func validatePatch(actuators []PatchedActuator) error {
	used := make(map[int]string)
	for i, a := range actuators {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("actuator %d", i)
		}
		if a.StepPin < 0 {
			return fmt.Errorf("%s: step_pin must be set", name)
		}
		for _, line := range []int{a.StepPin, a.DirPin} {
			if line == NoPin {
				continue
			}
			if other, ok := used[line]; ok {
				return fmt.Errorf("%s: gpio %d already used by %s", name, line, other)
			}
			used[line] = name
		}
	}
	return nil
}
