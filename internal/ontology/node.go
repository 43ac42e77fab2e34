package ontology

import "context"

// Node is the slice of an ontology-graph node the rule engine consumes.
// The graph itself lives elsewhere; the engine only reads these attributes.
type Node struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Label   string  `json:"label,omitempty"`
	Clarity float64 `json:"clarity"`
	Depth   float64 `json:"depth"`
}

// NodeSource resolves a node by ID. Returns (nil, nil) when the node does
// not exist.
type NodeSource interface {
	GetNode(ctx context.Context, id string) (*Node, error)
}
