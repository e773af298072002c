package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/tool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// AskToolName is the MCP tool that forwards a question to the notes agent.
const AskToolName = "ask_notomate"

// Asker answers a question with the notes specialist.
type Asker interface {
	Ask(ctx context.Context, history []core.Message, input string, emit core.EmitFunc) (*agent.Result, error)
}

// Options configures the MCP server.
type Options struct {
	// Asker, when set, registers AskToolName.
	Asker  Asker
	Logger logging.Logger
}

// New creates an MCP server with every tool registered.
func New(tools []tool.Tool, optFns ...func(o *Options)) (*server.MCPServer, error) {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := server.NewMCPServer(
		"notomate",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Search and read the user's Notion notes."),
	)

	for _, t := range tools {
		def, err := Definition(t)
		if err != nil {
			return nil, err
		}
		s.AddTool(def, Handler(t, opts.Logger))
	}

	if opts.Asker != nil {
		ask := &askTool{asker: opts.Asker, logger: opts.Logger}
		s.AddTool(ask.Definition(), ask.Handle)
	}

	return s, nil
}

// Definition converts a tool into its MCP description. The JSON schema is
// passed through unchanged.
func Definition(t tool.Tool) (mcp.Tool, error) {
	schema, err := json.Marshal(t.Parameters())
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("tool %s: failed to marshal schema: %w", t.Name(), err)
	}

	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), nil
}

// Handler adapts t to an MCP tool handler. Strings are returned as is and
// any other result is rendered as JSON.
func Handler(t tool.Tool, logger logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		toolCtx := core.NewToolContext(ctx, "mcp", core.NewID(), logger)

		result, err := t.Call(toolCtx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if s, ok := result.(string); ok {
			return mcp.NewToolResultText(s), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

type askTool struct {
	asker  Asker
	logger logging.Logger
}

func (t *askTool) Definition() mcp.Tool {
	return mcp.NewTool(AskToolName,
		mcp.WithDescription("Ask the NotoMate notes agent a question about the user's Notion workspace."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer from the notes"),
		),
	)
}

func (t *askTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	res, err := t.asker.Ask(ctx, nil, question, nil)
	if err != nil {
		t.logger.Warn("mcp.ask.failed", "error", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	return mcp.NewToolResultText(res.Output), nil
}
