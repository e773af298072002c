// Package tui implements the terminal chat front end.
//
// The program keeps one conversation per run. In agent mode questions go
// straight to the notes agent and its tokens stream into the transcript. In
// supervisor mode every turn runs through the delegation graph and only the
// final answer is rendered; the status line names the agent currently at
// work.
package tui
