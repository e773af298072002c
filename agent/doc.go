// Package agent contains the two agent roles of NotoMate:
//
//  1. ModelAgent: a model bound to an instruction and a set of tools that
//     loops over tool calls until it can answer (the notes specialist).
//  2. Supervisor: a model that either answers the user or asks a named
//     specialist for information through the get_info_from_agent tool.
//
// Both delegate the request/response cycle to the flow package. Routing
// between them lives in the graph package.
package agent
