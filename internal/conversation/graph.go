package conversation

import (
	"github.com/Dima11235813/wellness-clinic-agent/internal/nodes"
	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// BuildEngine assembles the conversation graph:
//
//	intent ─┬─> policy ─> end
//	        └─> offer_agent ─> offer_tools ─> offer_finalize ─┬─> confirm
//	                 ^                                        └─> escalate
//	                 │                                               │
//	        confirm ─┴─(reject / retry)          notify <─ confirm   │
//	                                                  │              │
//	                                                  └─> intent <───┘
//
// The cycles back to intent are the designed fixed point: with no query
// left to process the engine ends the turn there.
func BuildEngine(store ports.ThreadStore, deps nodes.Deps, opts ...runtime.Option) *runtime.Engine {
	opts = append([]runtime.Option{runtime.WithEntryNode(nodes.NodeIntent)}, opts...)
	engine := runtime.NewEngine(store, opts...)

	engine.
		AddNode(nodes.NewIntentNode(deps)).
		AddNode(nodes.NewPolicyNode(deps)).
		AddNode(nodes.NewOfferAgentNode(deps)).
		AddNode(nodes.NewOfferToolsNode(deps)).
		AddNode(nodes.NewOfferFinalizeNode(deps)).
		AddNode(nodes.NewConfirmNode(deps)).
		AddNode(nodes.NewNotifyNode(deps)).
		AddNode(nodes.NewEscalateNode(deps))

	engine.AddRouter(nodes.NodeIntent, nodes.RouteIntent)
	engine.AddRouter(nodes.NodeOfferFinalize, nodes.RouteOffer)

	return engine
}
