package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/midifile"
	"github.com/robmorgan/steppatron/notetable"
	"github.com/robmorgan/steppatron/rhythm"
)

func main() {
	notesOnly := flag.Bool("notes", false, "only list note events")
	flag.Parse()

	logger := logger.GetProjectLogger()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mididump [-notes] FILE")
		os.Exit(2)
	}

	f, err := midifile.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatalf("could not decode %s: %v", flag.Arg(0), err)
	}
	dump(os.Stdout, f, *notesOnly)
}

// dump prints the header and every track with absolute ticks and bar.beat positions.
func dump(w io.Writer, f *midifile.File, notesOnly bool) {
	h := f.Header
	fmt.Fprintf(w, "format %d, %d tracks, %d ticks per quarter\n", h.Format, h.Tracks, h.TicksPerQuarter())

	tempo := rhythm.NewTempo(h.TicksPerQuarter())
	for i, t := range f.Tracks {
		fmt.Fprintf(w, "\ntrack %d %q: %d events\n", i, t.Name(), len(t.Events))

		var tick uint64
		for _, ev := range t.Events {
			tick += uint64(ev.Delta)
			if us, ok := ev.Tempo(); ok {
				tempo.SetTempo(us)
			}
			if num, pow, ok := ev.TimeSignature(); ok {
				tempo.SetTimeSignature(num, pow)
			}

			key, _, isNote := ev.Note()
			if notesOnly && !isNote {
				continue
			}
			line := ev.String()
			if isNote {
				line = fmt.Sprintf("%s %s", line, notetable.Name(key))
			}
			fmt.Fprintf(w, "%8d %10s  %s\n", tick, tempo.GetPosition(tick).GetMarker(), line)
		}
	}
}
