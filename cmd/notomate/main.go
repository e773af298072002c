// Command notomate is the terminal chat for NotoMate.
//
// Usage:
//
//	notomate [-mode agent|supervisor] [-config notomate.yaml] [-log-file notomate.log]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/notomate"
	"github.com/hupe1980/notomate/config"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/tui"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML config file")
	mode := flag.String("mode", string(tui.ModeSupervisor), "Chat mode: agent or supervisor")
	logFile := flag.String("log-file", "", "Write logs to this file (logging is off otherwise)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *mode, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, modeName, logFile string) error {
	mode, err := tui.ParseMode(modeName)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	var logger logging.Logger = logging.NoOpLogger{}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		level, _ := logging.ParseLevel(cfg.Logging.Level)
		logger = logging.NewLogger(&logging.LoggerConfig{
			Level:     level,
			Format:    cfg.Logging.Format,
			Output:    f,
			Component: "tui",
		})
	}

	app, err := notomate.New(cfg, func(o *notomate.Options) { o.Logger = logger })
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	var backend tui.Backend = tui.NewSupervisorBackend(app.Runner)
	if mode == tui.ModeAgent {
		backend = tui.NewAgentBackend(app)
	}

	return tui.Run(ctx, backend, mode)
}
