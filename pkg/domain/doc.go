// Package domain contains the core types of the clinic conversation agent:
// the per-thread conversation state, the message log, the patch/reducer
// model used by the graph engine, and the interrupt/resume protocol types.
//
// The package has no dependencies on the engine or any adapter; every type
// here is fully serializable so a suspended conversation can be persisted
// and resumed across process boundaries.
package domain
