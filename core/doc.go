// Package core provides the foundational domain types shared by every other
// NotoMate package:
//
//   - Message, a closed tagged union over user text, assistant text, system
//     notes, tool invocation requests and tool results
//   - Conversation, an append-only message history owned by one session
//   - Event, the streaming unit delivered to front ends
//   - ToolContext, the scoped surface handed to tool implementations
//
// The package intentionally keeps implementation concerns (model providers,
// agents, routing) out of scope.
package core
