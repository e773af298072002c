// Package logging provides the Logger interface used across NotoMate and its
// slog backed implementation.
//
// Entries are keyed by dotted event names ("graph.step", "tool.call.start",
// "server.request") followed by key/value pairs, so JSON output can be
// filtered per event:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Component: "graph"})
//	logger.Info("graph.step", "node", "Supervisor", "step", 1)
//
// NoOpLogger is the default wherever a logger is optional.
package logging
