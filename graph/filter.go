package graph

import (
	"fmt"
	"strings"

	"github.com/hupe1980/notomate/core"
)

// FilterForSpecialist prepares the history a specialist sees. Tool
// invocation requests are dropped and tool results become system notes
// naming the agent that produced them. Every other message is kept as is.
func FilterForSpecialist(messages []core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))

	for _, m := range messages {
		switch m.Kind() {
		case core.KindToolInvocation:
			continue
		case core.KindToolResult:
			out = append(out, core.NewSystemMessage(fmt.Sprintf("Prior answer from an agent %s: %s", m.Name, m.ResultText())))
		default:
			out = append(out, m)
		}
	}

	return out
}

// requestNote joins the distinct task descriptions of a batch in order of
// first appearance, or returns false when the supervisor gave none.
func requestNote(reqs []DelegationRequest) (core.Message, bool) {
	var inputs []string
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		if r.Input == "" {
			continue
		}
		if _, dup := seen[r.Input]; dup {
			continue
		}
		seen[r.Input] = struct{}{}
		inputs = append(inputs, r.Input)
	}

	if len(inputs) == 0 {
		return core.Message{}, false
	}

	return core.NewSystemMessage("Request from the supervisor: " + strings.Join(inputs, "\n")), true
}
