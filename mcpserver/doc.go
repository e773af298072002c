// Package mcpserver exposes the Notion tools, and optionally the notes
// agent, to MCP clients. Tool arguments pass through the same schema
// validation the agents use; failures are reported as tool errors so the
// client's model can react to them.
package mcpserver
