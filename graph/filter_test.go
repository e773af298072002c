package graph

import (
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterForSpecialist(t *testing.T) {
	history := testutil.NewHistory().
		User("find my notes about Go").
		Delegate("c1", "NotionAPI", "notes about Go").
		Result("NotionAPI", "c1", `[{"title":"Go tips"}]`).
		Assistant("Supervisor", "You have one note: Go tips").
		User("open it").
		Build()

	got := FilterForSpecialist(history)

	assert.Equal(t, []core.Kind{
		core.KindUserText,
		core.KindSystemNote,
		core.KindAssistantText,
		core.KindUserText,
	}, testutil.Kinds(got))
	assert.Equal(t, `Prior answer from an agent NotionAPI: [{"title":"Go tips"}]`, got[1].Text())
	assert.Equal(t, history[0].ID, got[0].ID)
	assert.Equal(t, history[3].ID, got[2].ID)

	// The input is left untouched.
	assert.Equal(t, core.KindToolInvocation, history[1].Kind())
}

func TestFilterForSpecialist_KeepsAllTextMessages(t *testing.T) {
	histories := [][]core.Message{
		nil,
		testutil.NewHistory().User("a").Build(),
		testutil.NewHistory().User("a").Assistant("Supervisor", "b").User("c").Assistant("Supervisor", "d").Build(),
		testutil.NewHistory().Delegate("c1", "NotionAPI", "").Result("NotionAPI", "c1", "x").User("a").Build(),
		testutil.NewHistory().User("a").Delegate("c1", "NotionAPI", "").Delegate("c2", "NotionAPI", "").
			Result("NotionAPI", "c1", "x").Result("NotionAPI", "c2", "x").Assistant("Supervisor", "b").System("s").Build(),
	}

	for _, h := range histories {
		var want []string
		for _, m := range h {
			if k := m.Kind(); k == core.KindUserText || k == core.KindAssistantText {
				want = append(want, m.ID)
			}
		}

		var got []string
		for _, m := range FilterForSpecialist(h) {
			if k := m.Kind(); k == core.KindUserText || k == core.KindAssistantText {
				got = append(got, m.ID)
			}
			assert.NotEqual(t, core.KindToolInvocation, m.Kind())
			assert.NotEqual(t, core.KindToolResult, m.Kind())
		}

		assert.Equal(t, want, got)
	}
}

func TestRequestNote(t *testing.T) {
	_, ok := requestNote([]DelegationRequest{{CallID: "c1"}})
	assert.False(t, ok)

	note, ok := requestNote([]DelegationRequest{
		{CallID: "c1", Input: "notes about Go"},
		{CallID: "c2", Input: "notes about Go"},
	})
	require.True(t, ok)
	assert.Equal(t, core.KindSystemNote, note.Kind())
	assert.Equal(t, "Request from the supervisor: notes about Go", note.Text())
}

func TestRequestNote_DropsNonAdjacentDuplicates(t *testing.T) {
	note, ok := requestNote([]DelegationRequest{
		{CallID: "c1", Input: "A"},
		{CallID: "c2", Input: "B"},
		{CallID: "c3"},
		{CallID: "c4", Input: "A"},
	})
	require.True(t, ok)
	assert.Equal(t, "Request from the supervisor: A\nB", note.Text())
}
