// Package notion exposes the Notion REST API to NotoMate agents.
//
// Client is a small typed wrapper over the two endpoints the agents need
// (search and block children). Tools wraps a Client into schema-validated
// tool.Tool values. Upstream failures are handed back to the model as plain
// text results so a conversation can continue after an API error.
package notion
