// Package server exposes the agents over HTTP.
//
// Routes:
//
//	GET  /                     redirect to /docs
//	GET  /docs                 route description
//	GET  /healthz              liveness probe
//	POST /notion-agent/invoke  notes specialist, {input, chat_history}
//	POST /notion-agent/stream  same, as server-sent events
//	POST /supervisor/invoke    delegation graph, {messages, session_id}
//	POST /supervisor/stream    same, as server-sent events
//	POST /sessions             create a conversation session
//	DELETE /sessions/{id}      forget a session
//
// When an allowed username is configured every agent route requires the
// identity headers set by the OAuth proxy in front of the server.
package server
