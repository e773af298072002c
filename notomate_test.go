package notomate

import (
	"context"
	"testing"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/config"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/internal/testutil"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/model"
	anthropicmodel "github.com/hupe1980/notomate/model/anthropic"
	openaimodel "github.com/hupe1980/notomate/model/openai"
	"github.com/hupe1980/notomate/notion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotion struct{ queries []string }

func (s *stubNotion) Search(_ context.Context, req notion.SearchRequest) (notion.Object, error) {
	s.queries = append(s.queries, req.Query)
	return notion.Object{"object": "list", "results": []any{map[string]any{"id": "p1"}}}, nil
}

func (s *stubNotion) BlockChildren(context.Context, string, string, int) (notion.Object, error) {
	return notion.Object{"object": "list", "results": []any{}}, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Notion.APIKey = "secret"
	cfg.Model.OpenAIAPIKey = "sk"
	return cfg
}

func TestNew_WiresSupervisorAndSpecialist(t *testing.T) {
	llm := model.NewMockModel("mock",
		model.CallTurn(testutil.DelegationCall("d1", agent.NotesSpecialistName, "")),
		model.CallTurn(core.FunctionCall{ID: "s1", Name: notion.SearchToolName, Arguments: `{"query":"X"}`}),
		model.TextTurn(`[{"id":"p1"}]`),
		model.TextTurn("You have one note about X."),
	)
	api := &stubNotion{}

	app, err := New(testConfig(), func(o *Options) {
		o.Model = llm
		o.NotionAPI = api
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)

	assert.Equal(t, []string{agent.NotesSpecialistName}, app.Graph.Specialists())
	assert.Len(t, app.Tools(), 2)
	assert.False(t, app.Auth.Enabled())

	sess, err := app.Runner.Sessions().Create()
	require.NoError(t, err)

	turn, err := app.Runner.RunSync(context.Background(), sess.ID, "find my notes about X")
	require.NoError(t, err)

	assert.Equal(t, "You have one note about X.", turn.Result.Message.Text())
	assert.Equal(t, []string{"X"}, api.queries)
	assert.Equal(t, 4, llm.Calls())
}

func TestApp_Ask(t *testing.T) {
	llm := model.NewMockModel("mock", model.TextTurn(`{"answer":"hi"}`))

	app, err := New(testConfig(), func(o *Options) {
		o.Model = llm
		o.NotionAPI = &stubNotion{}
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)

	res, err := app.Ask(context.Background(), testutil.NewHistory().User("a").Assistant("NotionAPI", "b").Build(), "c", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"hi"}`, res.Output)
	assert.Len(t, llm.Requests()[0].Messages, 3)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Notion.APIKey = ""
	_, err = New(cfg, func(o *Options) { o.Model = model.NewMockModel("mock") })
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(config.ModelConfig{Provider: config.ProviderOpenAI, Name: "gpt-4o-mini", OpenAIAPIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &openaimodel.Model{}, m)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)

	m, err = NewModel(config.ModelConfig{Provider: config.ProviderAnthropic, AnthropicAPIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &anthropicmodel.Model{}, m)

	_, err = NewModel(config.ModelConfig{Provider: "cohere"})
	assert.Error(t, err)
}
