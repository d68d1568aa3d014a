package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/robmorgan/steppatron/config"
	"github.com/robmorgan/steppatron/livein"
	"github.com/robmorgan/steppatron/logger"
	"github.com/robmorgan/steppatron/midifile"
	"github.com/robmorgan/steppatron/sequencer"
	"github.com/robmorgan/steppatron/transport"
	"github.com/robmorgan/steppatron/voice"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"k8s.io/utils/clock"
)

func runPlay(ctx context.Context, cfg config.SteppatronConfig, args []string) (err error) {
	if len(args) != 1 {
		return fmt.Errorf("play needs exactly one file")
	}
	logger := logger.GetProjectLogger()

	// decode before touching any actuator
	f, err := midifile.ReadFile(args[0])
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"file": args[0], "format": f.Header.Format, "tracks": len(f.Tracks)}).
		Info("File loaded")

	router, err := newRouter(cfg, f)
	if err != nil {
		return err
	}

	out, err := openOutput(cfg, clock.RealClock{})
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	wg := sync.WaitGroup{}
	workerCtx, stopWorker := context.WithCancel(ctx)
	startStatusWorker(workerCtx, cfg, out, &wg)

	logger.Info("Playing...")
	err = sequencer.New(f, router, out.sink, clock.RealClock{}).Run(ctx)

	stopWorker()
	wg.Wait()
	logStatus(out)
	return err
}

func runLive(ctx context.Context, cfg config.SteppatronConfig, args []string) (err error) {
	fs := flag.NewFlagSet("live", flag.ContinueOnError)
	oscAddr := fs.String("osc", "", "UDP address to receive OSC /note messages on")
	raw := fs.String("raw", "", "raw MIDI byte stream device")
	baud := fs.Int("baud", 0, "open -raw as a serial port at this rate")
	port := fs.String("port", "", "MIDI input port name (rtmidi builds)")
	list := fs.Bool("list", false, "list the MIDI input ports and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *list {
		return listInputs(os.Stdout)
	}

	liveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan livein.Event, 64)
	var produce func(context.Context) error
	switch {
	case *oscAddr != "":
		produce = func(ctx context.Context) error { return livein.ListenOSC(ctx, *oscAddr, events) }
	case *raw != "":
		r, err := openRaw(*raw, *baud)
		if err != nil {
			return err
		}
		defer r.Close()
		produce = func(ctx context.Context) error {
			// unblock the reader when playback stops
			stop := context.AfterFunc(ctx, func() { r.Close() })
			defer stop()
			return livein.ReadStream(ctx, r, events)
		}
	case *port != "":
		produce = func(ctx context.Context) error { return livein.ListenPort(ctx, *port, events) }
	default:
		return fmt.Errorf("live needs one of -osc, -raw or -port")
	}

	out, err := openOutput(cfg, clock.RealClock{})
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	wg := sync.WaitGroup{}
	startStatusWorker(liveCtx, cfg, out, &wg)

	var produceErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(events)
		produceErr = produce(liveCtx)
	}()

	err = livein.Play(liveCtx, events, voice.NewAllocator(len(cfg.Actuators)), out.sink)
	cancel()
	wg.Wait()
	logStatus(out)

	// the input ending on its own is the reason playback stopped
	if err == nil && ctx.Err() == nil && produceErr != nil && !errors.Is(produceErr, context.Canceled) {
		err = produceErr
	}
	return err
}

func runServe(ctx context.Context, cfg config.SteppatronConfig, args []string) (err error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	raw := fs.String("raw", "", "device the command records arrive on")
	baud := fs.Int("baud", 0, "open -raw as a serial port at this rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *raw == "" {
		return fmt.Errorf("serve needs -raw")
	}
	if cfg.Output.Kind != config.OutputLocal {
		return fmt.Errorf("serve drives local actuators, output is %q", cfg.Output.Kind)
	}

	r, err := openRaw(*raw, *baud)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := openOutput(cfg, clock.RealClock{})
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	wg := sync.WaitGroup{}
	workerCtx, stopWorker := context.WithCancel(ctx)
	startStatusWorker(workerCtx, cfg, out, &wg)

	logger.GetProjectLogger().WithField("device", *raw).Info("Serving command records")
	err = transport.Serve(ctx, r, out.driver)

	stopWorker()
	wg.Wait()
	return err
}

// listInputs prints one MIDI input port name per line.
func listInputs(w io.Writer) error {
	names, err := livein.ListInputs()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

// openRaw opens a byte stream device, as a serial port when baud is set.
func openRaw(name string, baud int) (io.ReadCloser, error) {
	if baud > 0 {
		return serial.Open(name, &serial.Mode{BaudRate: baud})
	}
	return os.Open(name)
}

func closeOutput(out *output, err *error) {
	if cerr := out.close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
