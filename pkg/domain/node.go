package domain

import "slices"

// Metadata keys written by the engine. The core algorithm never reads them.
const (
	MetaDepth    = "depth"
	MetaSequence = "sequence"
)

// Node represents one candidate prompt in the exploration tree.
//
// ID, Prompt, Score and ParentID are fixed at creation. ChildrenIDs only grows,
// through AddChild. Relations are plain identifiers: the store owns every node.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Prompt   string  `json:"prompt" yaml:"prompt"`
	Score    float64 `json:"score" yaml:"score"`
	ParentID string  `json:"parent_id,omitempty" yaml:"parent_id,omitempty"` // empty for the root

	ChildrenIDs []string `json:"children_ids" yaml:"children_ids"`

	// Metadata holds auxiliary annotations for consumers (depth, sequence, ...).
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewNode creates a node with empty children and metadata.
func NewNode(id, prompt string, score float64, parentID string) *Node {
	return &Node{
		ID:          id,
		Prompt:      prompt,
		Score:       score,
		ParentID:    parentID,
		ChildrenIDs: []string{},
		Metadata:    make(map[string]any),
	}
}

// AddChild appends a child id. Adding an id twice is a no-op.
func (n *Node) AddChild(childID string) {
	if slices.Contains(n.ChildrenIDs, childID) {
		return
	}
	n.ChildrenIDs = append(n.ChildrenIDs, childID)
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return len(n.ChildrenIDs) == 0
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == ""
}

// Clone returns a detached copy, so callers cannot mutate the store through it.
func (n Node) Clone() Node {
	c := n
	c.ChildrenIDs = slices.Clone(n.ChildrenIDs)
	if c.ChildrenIDs == nil {
		c.ChildrenIDs = []string{}
	}
	c.Metadata = make(map[string]any, len(n.Metadata))
	for k, v := range n.Metadata {
		c.Metadata[k] = v
	}
	return c
}

// CalculateImprovement returns the score gain of a child over its parent.
func CalculateImprovement(parentScore, childScore float64) float64 {
	return childScore - parentScore
}
