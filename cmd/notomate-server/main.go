// Command notomate-server serves the NotoMate HTTP API.
//
// Usage:
//
//	notomate-server [-config notomate.yaml] [-addr :8000]
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
	"github.com/hupe1980/notomate/server"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, addr string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	app, err := notomate.New(cfg)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	s := server.New(app, app.Graph, app.Runner, func(o *server.Options) {
		o.Addr = cfg.Server.Addr
		o.ShutdownTimeout = cfg.Server.ShutdownTimeout
		o.Auth = app.Auth
		o.Logger = cfg.NewLogger("server")
	})

	return s.ListenAndServe(ctx)
}
