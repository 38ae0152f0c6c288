package domain

import (
	"context"
	"time"
)

// EventType defines the category of an engine lifecycle event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventInterrupt EventType = "interrupt"
	EventTurnEnd   EventType = "turn_end"
)

// NodeEvent describes entry to or exit from a graph node.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ThreadID  string    `json:"thread_id"`
	Node      string    `json:"node"`
	Hop       int       `json:"hop"`
}

// InterruptEvent is emitted when a node parks the graph.
type InterruptEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	ThreadID  string        `json:"thread_id"`
	Node      string        `json:"node"`
	Kind      InterruptKind `json:"kind"`
}

// TurnEvent is emitted when a turn reaches a stopping condition.
type TurnEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	ThreadID    string    `json:"thread_id"`
	Disposition string    `json:"disposition"`
	Hops        int       `json:"hops"`
}

// LifecycleHooks are optional engine observability callbacks. Nil hooks
// are skipped; hook panics are not recovered (observers must be benign).
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnInterrupt func(context.Context, *InterruptEvent)
	OnTurnEnd   func(context.Context, *TurnEvent)
}
