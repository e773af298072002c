package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/notion"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotion struct {
	queries []string
	err     error
}

func (s *stubNotion) Search(_ context.Context, req notion.SearchRequest) (notion.Object, error) {
	s.queries = append(s.queries, req.Query)
	if s.err != nil {
		return nil, s.err
	}
	return notion.Object{"object": "list", "results": []any{map[string]any{"id": "p1"}}}, nil
}

func (s *stubNotion) BlockChildren(context.Context, string, string, int) (notion.Object, error) {
	return notion.Object{"object": "list", "results": []any{}}, nil
}

type stubAsker struct {
	question string
	err      error
}

func (a *stubAsker) Ask(_ context.Context, _ []core.Message, input string, _ core.EmitFunc) (*agent.Result, error) {
	a.question = input
	if a.err != nil {
		return nil, a.err
	}
	return &agent.Result{Output: "You have one note."}, nil
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestDefinition_PassesSchemaThrough(t *testing.T) {
	search := notion.NewSearchTool(&stubNotion{})

	def, err := Definition(search)
	require.NoError(t, err)

	assert.Equal(t, notion.SearchToolName, def.Name)
	assert.Equal(t, search.Description(), def.Description)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(def.RawInputSchema, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"], "query")
}

func TestHandler_Success(t *testing.T) {
	api := &stubNotion{}
	h := Handler(notion.NewSearchTool(api), logging.NoOpLogger{})

	res, err := h(context.Background(), makeReq(notion.SearchToolName, map[string]any{"query": "X"}))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, []string{"X"}, api.queries)
	assert.JSONEq(t, `{"object":"list","results":[{"id":"p1"}]}`, resultText(res))
}

func TestHandler_ValidationError(t *testing.T) {
	api := &stubNotion{}
	h := Handler(notion.NewSearchTool(api), logging.NoOpLogger{})

	res, err := h(context.Background(), makeReq(notion.SearchToolName, nil))
	require.NoError(t, err)

	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "VALIDATION_ERROR")
	assert.Empty(t, api.queries)
}

func TestHandler_UpstreamFailureIsText(t *testing.T) {
	api := &stubNotion{err: &notion.APIError{Status: 401, Code: "unauthorized", Message: "API token is invalid."}}
	h := Handler(notion.NewSearchTool(api), logging.NoOpLogger{})

	res, err := h(context.Background(), makeReq(notion.SearchToolName, map[string]any{"query": "X"}))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "Notion request failed: notion api error (status 401, code unauthorized): API token is invalid.", resultText(res))
}

func TestAskTool(t *testing.T) {
	asker := &stubAsker{}
	ask := &askTool{asker: asker, logger: logging.NoOpLogger{}}

	assert.Equal(t, AskToolName, ask.Definition().Name)

	res, err := ask.Handle(context.Background(), makeReq(AskToolName, map[string]any{"question": "what about X?"}))
	require.NoError(t, err)
	assert.Equal(t, "You have one note.", resultText(res))
	assert.Equal(t, "what about X?", asker.question)

	res, err = ask.Handle(context.Background(), makeReq(AskToolName, nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	asker.err = errors.New("model down")
	res, err = ask.Handle(context.Background(), makeReq(AskToolName, map[string]any{"question": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "model down")
}

func TestNew_InProcessClient(t *testing.T) {
	api := &stubNotion{}
	s, err := New(notion.Tools(api), func(o *Options) { o.Asker = &stubAsker{} })
	require.NoError(t, err)

	ctx := context.Background()

	c, err := client.NewInProcessClient(s)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tl := range list.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{notion.SearchToolName, notion.PageContentToolName, AskToolName}, names)

	res, err := c.CallTool(ctx, makeReq(notion.SearchToolName, map[string]any{"query": "Y"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"Y"}, api.queries)
}
