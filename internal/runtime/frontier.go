package runtime

import (
	"container/heap"
	"slices"

	"github.com/aretw0/arbor/pkg/domain"
)

type frontierItem struct {
	id    string
	score float64
	seq   int // creation order of the node in the store
}

// frontier is a max-heap of expandable nodes.
// Ordering: higher score first; equal scores resolve to the lower seq (older node).
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool { return before(f[i], f[j]) }

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(frontierItem)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

func (f *frontier) push(item frontierItem) {
	heap.Push(f, item)
}

func (f *frontier) popMax() frontierItem {
	return heap.Pop(f).(frontierItem)
}

// entries lists the frontier in selection order without disturbing the heap.
func (f frontier) entries() []domain.FrontierEntry {
	sorted := slices.Clone(f)
	slices.SortFunc(sorted, func(a, b frontierItem) int {
		switch {
		case before(a, b):
			return -1
		case before(b, a):
			return 1
		}
		return 0
	})
	out := make([]domain.FrontierEntry, 0, len(sorted))
	for _, it := range sorted {
		out = append(out, domain.FrontierEntry{ID: it.id, Score: it.score})
	}
	return out
}

// before reports whether a is selected ahead of b.
func before(a, b frontierItem) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.seq < b.seq
}
