// Package session keeps per-session conversation state for the front ends.
//
// A Session owns the ordered history of one user conversation. Stores hand
// out copies so no mutable state is shared between sessions or callers.
// The in-memory store is volatile: restarting the process forgets every
// conversation.
package session
