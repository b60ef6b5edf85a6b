package domain

import (
	"slices"
	"time"
)

// Snapshot is a read-only, serializable view of a run.
// It is what the engine hands to visualization consumers and archives.
type Snapshot struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Config    Config          `json:"config" yaml:"config"`
	Outcome   Outcome         `json:"outcome" yaml:"outcome"`
	Nodes     []Node          `json:"nodes" yaml:"nodes"` // insertion order, root first
	Frontier  []FrontierEntry `json:"frontier" yaml:"frontier"`
}

// Node returns the node with the given ID.
func (s *Snapshot) Node(id string) (Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Root returns the parentless node.
func (s *Snapshot) Root() (Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n Node) bool { return n.IsRoot() })
	if i < 0 {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Best returns the node recorded as the best of the run.
func (s *Snapshot) Best() (Node, bool) {
	return s.Node(s.Outcome.BestID)
}

// PathTo returns the lineage root → id. It returns nil if id is unknown
// or the chain is broken.
func (s *Snapshot) PathTo(id string) []Node {
	index := make(map[string]Node, len(s.Nodes))
	for _, n := range s.Nodes {
		index[n.ID] = n
	}

	var path []Node
	seen := make(map[string]bool)
	for cur := id; cur != ""; {
		n, ok := index[cur]
		if !ok || seen[cur] {
			return nil
		}
		seen[cur] = true
		path = append(path, n)
		cur = n.ParentID
	}
	slices.Reverse(path)
	return path
}

// InFrontier reports whether id is still awaiting expansion.
func (s *Snapshot) InFrontier(id string) bool {
	return slices.ContainsFunc(s.Frontier, func(e FrontierEntry) bool { return e.ID == id })
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Frontier = slices.Clone(s.Frontier)
	return out
}
