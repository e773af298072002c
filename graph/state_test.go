package graph

import (
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Node
	}{
		{
			name:  "empty history",
			state: State{},
			want:  Supervisor(),
		},
		{
			name:  "user turn",
			state: State{Messages: testutil.NewHistory().User("hi").Build()},
			want:  Supervisor(),
		},
		{
			name:  "final answer",
			state: State{Messages: testutil.NewHistory().User("hi").Assistant("Supervisor", "hello").Build()},
			want:  Done(),
		},
		{
			name:  "empty assistant text is not final",
			state: State{Messages: testutil.NewHistory().User("hi").Assistant("Supervisor", "").Build()},
			want:  Supervisor(),
		},
		{
			name:  "tool result returns to supervisor",
			state: State{Messages: testutil.NewHistory().User("hi").Delegate("c1", "NotionAPI", "").Result("NotionAPI", "c1", "{}").Build()},
			want:  Supervisor(),
		},
		{
			name: "pending batch goes to last target",
			state: State{
				Messages: testutil.NewHistory().User("hi").Build(),
				Pending:  []DelegationRequest{{CallID: "c1", Target: "Calendar"}, {CallID: "c2", Target: "NotionAPI"}},
			},
			want: SpecialistNode("NotionAPI"),
		},
		{
			name: "final answer wins over pending",
			state: State{
				Messages: []core.Message{core.NewAssistantMessage("Supervisor", "done")},
				Pending:  []DelegationRequest{{CallID: "c1", Target: "NotionAPI"}},
			},
			want: Done(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(&tt.state))
		})
	}
}

func TestNode_String(t *testing.T) {
	assert.Equal(t, "Supervisor", Supervisor().String())
	assert.Equal(t, "Specialist(NotionAPI)", SpecialistNode("NotionAPI").String())
	assert.Equal(t, "Done", Done().String())
}
