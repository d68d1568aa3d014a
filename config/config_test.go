package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steppatron.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewSteppatronConfig()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Actuators, 4)
	assert.Equal(t, AllocationTracks, cfg.Allocation)

	sustain, err := cfg.GetMaxSustain()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, sustain)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
actuators:
  - name: low
    step_pin: 17
    dir_pin: 27
  - name: high
    step_pin: 22
max_sustain: 2s
ramp:
  steps: 40
  start_hz: 400
allocation: steal
output:
  kind: serial
  device: /dev/ttyACM0
  baud: 31250
status_interval: 500ms
log_level: debug
`)
	cfg, err := LoadSteppatronConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []PatchedActuator{
		{Name: "low", StepPin: 17, DirPin: 27},
		{Name: "high", StepPin: 22, DirPin: NoPin},
	}, cfg.Actuators)
	assert.Equal(t, RampConfig{Steps: 40, StartHz: 400}, cfg.Ramp)
	assert.Equal(t, AllocationSteal, cfg.Allocation)
	assert.Equal(t, OutputConfig{Kind: OutputSerial, Device: "/dev/ttyACM0", Baud: 31250, Pins: PinsSim}, cfg.Output)

	interval, err := cfg.GetStatusInterval()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, interval)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	cfg, err := LoadSteppatronConfig(writeConfig(t, "log_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, PatchActuators(), cfg.Actuators)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no actuators":   "actuators: []\n",
		"duplicate pin":  "actuators:\n  - step_pin: 5\n  - step_pin: 6\n    dir_pin: 5\n",
		"bad sustain":    "max_sustain: forever\n",
		"zero sustain":   "max_sustain: 0s\n",
		"bad allocation": "allocation: random\n",
		"serial device":  "output:\n  kind: serial\n",
		"bad output":     "output:\n  kind: carrier-pigeon\n",
		"bad pins":       "output:\n  pins: mmio\n",
		"bad level":      "log_level: loud\n",
		"negative ramp":  "ramp:\n  steps: -1\n",
	}
	for name, body := range cases {
		_, err := LoadSteppatronConfig(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadSteppatronConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
