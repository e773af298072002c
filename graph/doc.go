// Package graph implements the delegation graph that drives one
// conversational turn.
//
// The graph has three nodes: Supervisor, Specialist(name) and Done. The
// supervisor either answers the user, which ends the turn, or emits a batch
// of get_info_from_agent requests naming one specialist. The specialist is
// invoked once per batch over a filtered copy of the history and its answer
// is spliced back as a tool result for every request of the batch. Control
// then returns to the supervisor. A turn always starts at the supervisor,
// even when the history already ends with an answer.
//
// Every supervisor reply passes through Decode, which maps it onto exactly
// one of FinalAnswer or DelegationBatch. Anything else is an
// ErrContractViolation and aborts the turn.
package graph
