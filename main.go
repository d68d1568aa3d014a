package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	commonerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/steppatron/config"
	"github.com/robmorgan/steppatron/logger"
	"github.com/sirupsen/logrus"
)

const usage = `usage: steppatron [-config FILE] [-debug] COMMAND [ARGS]

commands:
  play FILE                             play a Standard MIDI File
  live [-osc ADDR] [-raw DEV [-baud N]] [-port NAME] [-list]
                                        play notes from a live input
  serve -raw DEV [-baud N]              apply command records arriving on DEV to the local actuators
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:]); err != nil && !errors.Is(err, context.Canceled) {
		logger := logger.GetProjectLogger()
		if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
			logger.Error(commonerrors.PrintErrorWithStackTrace(err))
		} else {
			logger.Error(err)
		}
		os.Exit(1)
	}
}

// Run parses the command line and runs one command until it finishes or ctx is cancelled.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("steppatron", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	configPath := fs.String("config", "", "YAML configuration file")
	debug := fs.Bool("debug", false, "log every command")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// initialize the global config
	cfg := config.NewSteppatronConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadSteppatronConfig(*configPath); err != nil {
			return commonerrors.WithStackTrace(err)
		}
	}
	level := cfg.LogLevel
	if *debug {
		level = logrus.DebugLevel.String()
	}
	if err := logger.SetLevel(level); err != nil {
		return commonerrors.WithStackTrace(err)
	}

	// initialize the logger
	logger := logger.GetProjectLogger()
	logger.WithField("actuators", len(cfg.Actuators)).Debug("Configuration loaded")

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	var err error
	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "play":
		err = runPlay(ctx, cfg, rest)
	case "live":
		err = runLive(ctx, cfg, rest)
	case "serve":
		err = runServe(ctx, cfg, rest)
	default:
		fs.Usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return commonerrors.WithStackTrace(err)
	}
	return err
}
