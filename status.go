package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/steppatron/config"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/notetable"
	"github.com/robmorgan/steppatron/stepper"
	"github.com/robmorgan/steppatron/utils"
)

const (
	progressBarWidth  = 20
	progressFullChar  = "█"
	progressEmptyChar = "░"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#5A56E0"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// startStatusWorker logs the actuator table periodically when a status interval is configured and the
// actuators are local.
func startStatusWorker(ctx context.Context, cfg config.SteppatronConfig, out *output, wg *sync.WaitGroup) {
	interval, err := cfg.GetStatusInterval()
	if err != nil || interval <= 0 || out.driver == nil {
		return
	}
	wg.Add(1)
	go StatusWorker(ctx, out.driver, interval, wg)
}

// StatusWorker renders the state of every actuator on each tick until ctx is done
func StatusWorker(ctx context.Context, driver *stepper.Driver, tick time.Duration, wg *sync.WaitGroup) error {
	defer wg.Done()
	logger := logger.GetProjectLogger()

	t := time.NewTimer(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("StatusWorker shutdown")
			return ctx.Err()
		case <-t.C:
			logger.Info("\n" + renderStatus(driver.States()))
			t.Reset(tick)
		}
	}
}

func logStatus(out *output) {
	if out.driver == nil {
		return
	}
	logger.GetProjectLogger().Info("Final actuator state\n" + renderStatus(out.driver.States()))
}

// renderStatus draws one row per actuator: its note, frequency and how close the watchdog is to tripping.
func renderStatus(states []stepper.State) string {
	rows := []string{headerStyle.Render(fmt.Sprintf(" %-3s %-5s %9s  %-*s ", "#", "note", "freq", progressBarWidth, "watchdog"))}
	for i, s := range states {
		if !s.Enabled {
			rows = append(rows, idleStyle.Render(fmt.Sprintf(" %-3d %-5s", i, "off")))
			continue
		}
		entry, _ := notetable.Default.Lookup(s.Note)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(noteColor(s.Note).Hex()))
		rows = append(rows, style.Render(fmt.Sprintf(" %-3d %-5s %7.1fHz  %s", i, entry.Name(), entry.Frequency,
			progressBar(s.Elapsed, s.Bound))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// noteColor spreads the playable range over the hue wheel, low notes red and high notes violet.
func noteColor(note uint8) colorful.Color {
	span := float64(notetable.MaxNote - notetable.MinNote)
	hue := float64(note-notetable.MinNote) / span * 300
	return colorful.Hsv(hue, 0.7, 0.95)
}

func progressBar(elapsed, bound uint32) string {
	full := 0
	if bound > 0 {
		full = int(uint64(elapsed) * progressBarWidth / uint64(bound))
	}
	full = utils.Clamp(full, 0, progressBarWidth)
	return strings.Repeat(progressFullChar, full) + strings.Repeat(progressEmptyChar, progressBarWidth-full)
}
