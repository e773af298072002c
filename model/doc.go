// Package model abstracts language model providers. A Model streams text
// deltas and a final assistant message, which may request tool calls.
//
// The openai and anthropic subpackages adapt the vendor SDKs. MockModel
// replays a script of turns and records the requests it receives, which
// keeps agent and graph tests deterministic.
package model
