// Package ports defines the interfaces the conversation core consumes:
// the external collaborators (classifier, completion model, retriever,
// calendar, escalation) and the thread store the engine persists to.
//
// Implementations live under internal/adapters. The core never talks to a
// concrete backend directly.
package ports
