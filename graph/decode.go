package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/tool"
)

// ErrContractViolation is returned when an agent reply is neither a final
// answer nor a well formed delegation batch.
var ErrContractViolation = errors.New("agent reply violates the routing contract")

// Decision is the decoded supervisor reply: FinalAnswer or DelegationBatch.
type Decision interface{ isDecision() }

// FinalAnswer ends the turn with Message.
type FinalAnswer struct {
	Message core.Message
}

func (FinalAnswer) isDecision() {}

// DelegationBatch holds the requests of one supervisor reply. All requests
// name the same target.
type DelegationBatch struct {
	Requests    []DelegationRequest
	CallMessage core.Message
}

func (DelegationBatch) isDecision() {}

// Target returns the specialist the batch is addressed to.
func (b DelegationBatch) Target() string {
	return b.Requests[len(b.Requests)-1].Target
}

type delegationArgs struct {
	AgentName string `json:"agent_name"`
	Input     string `json:"input"`
}

// Decode maps a supervisor reply onto a Decision. specialists lists the
// valid delegation targets.
func Decode(msg core.Message, specialists []string) (Decision, error) {
	switch msg.Kind() {
	case core.KindAssistantText:
		if msg.Text() == "" {
			return nil, fmt.Errorf("%w: empty answer from %q", ErrContractViolation, msg.Name)
		}
		return FinalAnswer{Message: msg}, nil
	case core.KindToolInvocation:
		return decodeBatch(msg, specialists)
	default:
		return nil, fmt.Errorf("%w: unexpected %s message from %q", ErrContractViolation, msg.Kind(), msg.Name)
	}
}

func decodeBatch(msg core.Message, specialists []string) (Decision, error) {
	calls := msg.FunctionCalls()
	batch := DelegationBatch{CallMessage: msg, Requests: make([]DelegationRequest, 0, len(calls))}

	for _, c := range calls {
		if c.Name != tool.DelegationToolName {
			return nil, fmt.Errorf("%w: unknown tool %q", ErrContractViolation, c.Name)
		}

		var args delegationArgs
		if c.Arguments != "" {
			if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
				return nil, fmt.Errorf("%w: malformed delegation arguments: %v", ErrContractViolation, err)
			}
		}

		if args.AgentName == "" {
			return nil, fmt.Errorf("%w: delegation without agent_name", ErrContractViolation)
		}
		if !slices.Contains(specialists, args.AgentName) {
			return nil, fmt.Errorf("%w: unknown agent %q", ErrContractViolation, args.AgentName)
		}
		if n := len(batch.Requests); n > 0 && batch.Requests[n-1].Target != args.AgentName {
			return nil, fmt.Errorf("%w: batch mixes agents %q and %q", ErrContractViolation, batch.Requests[n-1].Target, args.AgentName)
		}

		batch.Requests = append(batch.Requests, DelegationRequest{
			CallID:      c.ID,
			Target:      args.AgentName,
			Input:       args.Input,
			CallMessage: msg,
		})
	}

	return batch, nil
}
