/*
Dream runs a project: it loads the project document, opens a window and
plays the startup scene until the window closes or the process is signalled.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/dream/engine"
	"github.com/spaghettifunk/dream/engine/core"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		core.LogError("%s", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("dream", flag.ContinueOnError)
	configFlag := flagSet.String("config", "dream.toml", "Path to the engine config (.toml, .yaml or .yml).")
	projectFlag := flagSet.String("project", "", "Project directory, overrides the config.")
	headlessFlag := flagSet.Bool("headless", false, "Run without opening a window.")
	framesFlag := flagSet.Int("frames", 0, "Stop a headless run after this many frames. 0 runs until signalled.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := engine.LoadConfig(*configFlag)
	if err != nil {
		return err
	}
	if *projectFlag != "" {
		cfg.ProjectDir = *projectFlag
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = core.NewEnvironment().DefaultProjectsDirectory()
	}
	if *headlessFlag {
		cfg.Headless = true
		cfg.MaxFrames = *framesFlag
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = *logLevelFlag
	}

	e, err := engine.New(cfg, nil)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return fmt.Errorf("could not start %s: %w", cfg.ProjectDir, err)
	}

	// signal context to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	return runErr
}
