// Package runner executes conversational turns on behalf of the front ends.
//
// A Runner loads the session history, appends the user turn, runs the
// delegation graph asynchronously and streams its events over a channel.
// When the turn succeeds the session history is replaced with the graph's
// result; a failed turn leaves the session untouched.
//
// # Responsibilities
//   - Turn orchestration (async streaming plus a sync helper)
//   - Session history persistence
//   - Bounded concurrency across sessions, one turn at a time per session
//   - Turn cancellation by run id
package runner
