// Command notomate-mcp serves the Notion tools over MCP on stdio.
//
// Usage:
//
//	notomate-mcp [-config notomate.yaml] [-no-ask]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hupe1980/notomate"
	"github.com/hupe1980/notomate/config"
	"github.com/hupe1980/notomate/mcpserver"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML config file")
	noAsk := flag.Bool("no-ask", false, "Only expose the Notion tools, not the notes agent")
	flag.Parse()

	if err := run(*configFile, *noAsk); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, noAsk bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// stdout carries the protocol; NewLogger writes to stderr.
	logger := cfg.NewLogger("mcp")

	app, err := notomate.New(cfg, func(o *notomate.Options) { o.Logger = logger })
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	s, err := mcpserver.New(app.Tools(), func(o *mcpserver.Options) {
		if !noAsk {
			o.Asker = app
		}
		o.Logger = logger
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.ServeStdio(s)
}
