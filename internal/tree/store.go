// Package tree implements the node store: the arena that owns every node of
// one exploration run, keyed by identifier.
package tree

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/google/uuid"
)

// Store owns the nodes of a single run.
// It is not safe for concurrent use: exactly one engine writes to it.
type Store struct {
	nodes  map[string]*domain.Node
	order  []string
	rootID string
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
// The generator must never return an ID twice.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes: make(map[string]*domain.Node),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates an ID, stores a new node and links it to its parent.
// An empty parentID creates the root, which must be the first node.
func (s *Store) Create(prompt string, score float64, parentID string) (domain.Node, error) {
	var parent *domain.Node
	if parentID == "" {
		if s.rootID != "" {
			return domain.Node{}, domain.ErrRootExists
		}
	} else {
		p, ok := s.nodes[parentID]
		if !ok {
			return domain.Node{}, fmt.Errorf("parent %q: %w", parentID, domain.ErrNodeNotFound)
		}
		parent = p
	}

	id := s.newID()
	if _, exists := s.nodes[id]; exists {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrDuplicateID, id)
	}

	node := domain.NewNode(id, prompt, score, parentID)
	node.Metadata[domain.MetaSequence] = len(s.order)
	if parent == nil {
		node.Metadata[domain.MetaDepth] = 0
		s.rootID = id
	} else {
		node.Metadata[domain.MetaDepth] = depthOf(parent) + 1
		parent.AddChild(id)
	}

	s.nodes[id] = node
	s.order = append(s.order, id)
	return node.Clone(), nil
}

func depthOf(n *domain.Node) int {
	d, _ := n.Metadata[domain.MetaDepth].(int)
	return d
}

// Get returns a copy of the node with the given ID.
func (s *Store) Get(id string) (domain.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.order)
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Best returns the node with the highest score.
// Ties resolve to the earliest created node.
func (s *Store) Best() (domain.Node, error) {
	if len(s.order) == 0 {
		return domain.Node{}, domain.ErrEmptyStore
	}
	best := s.nodes[s.order[0]]
	for _, id := range s.order[1:] {
		if n := s.nodes[id]; n.Score > best.Score {
			best = n
		}
	}
	return best.Clone(), nil
}
