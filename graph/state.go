package graph

import "github.com/hupe1980/notomate/core"

// NodeKind enumerates the graph nodes.
type NodeKind int

const (
	NodeSupervisor NodeKind = iota
	NodeSpecialist
	NodeDone
)

// Node is a position in the delegation graph. Name is set for specialists.
type Node struct {
	Kind NodeKind
	Name string
}

// Supervisor returns the supervisor node.
func Supervisor() Node { return Node{Kind: NodeSupervisor} }

// SpecialistNode returns the node of the named specialist.
func SpecialistNode(name string) Node { return Node{Kind: NodeSpecialist, Name: name} }

// Done returns the terminal node.
func Done() Node { return Node{Kind: NodeDone} }

// String returns a log friendly label such as "Specialist(NotionAPI)".
func (n Node) String() string {
	switch n.Kind {
	case NodeSupervisor:
		return "Supervisor"
	case NodeSpecialist:
		return "Specialist(" + n.Name + ")"
	case NodeDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// DelegationRequest is one get_info_from_agent call that has not been
// answered yet.
type DelegationRequest struct {
	CallID string
	Target string
	Input  string
	// CallMessage is the supervisor message that carried the request.
	CallMessage core.Message
}

// State is the graph state of one turn. Pending requests are not part of
// Messages until the specialist has answered them.
type State struct {
	Messages []core.Message
	Pending  []DelegationRequest
}

// Last returns the last message of the history.
func (s *State) Last() (core.Message, bool) {
	if len(s.Messages) == 0 {
		return core.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Route selects the next node: Done when the history ends with a non-empty
// assistant answer, Supervisor when nothing is pending, otherwise the
// specialist named by the last pending request.
func Route(s *State) Node {
	if last, ok := s.Last(); ok && last.IsFinalAnswer() {
		return Done()
	}

	if len(s.Pending) == 0 {
		return Supervisor()
	}

	return SpecialistNode(s.Pending[len(s.Pending)-1].Target)
}
