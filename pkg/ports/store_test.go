package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockArchive is a minimal map-backed Archive used to check the contract suite itself.
type MockArchive struct {
	data map[string]domain.Snapshot
}

func NewMockArchive() *MockArchive {
	return &MockArchive{data: make(map[string]domain.Snapshot)}
}

func (m *MockArchive) Save(ctx context.Context, snap *domain.Snapshot) error {
	m.data[snap.RunID] = *snap
	return nil
}

func (m *MockArchive) Load(ctx context.Context, runID string) (*domain.Snapshot, error) {
	snap, ok := m.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return &snap, nil
}

func (m *MockArchive) Delete(ctx context.Context, runID string) error {
	delete(m.data, runID)
	return nil
}

func (m *MockArchive) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestArchive_Contract(t *testing.T) {
	ports.RunArchiveContract(t, NewMockArchive())
}

func TestEvaluatorFuncs(t *testing.T) {
	ev := ports.EvaluatorFuncs{
		EvaluateFunc: func(ctx context.Context, prompt string) (float64, error) {
			return float64(len(prompt)), nil
		},
	}

	score, err := ev.Evaluate(context.Background(), "abc")
	assert.NoError(t, err)
	assert.Equal(t, 3.0, score)

	proposals, err := ev.GenerateImprovements(context.Background(), "abc", 3, 2)
	assert.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestEvaluatorFuncs_NilEvaluate(t *testing.T) {
	var ev ports.EvaluatorFuncs

	assert.NotPanics(t, func() {
		_, err := ev.Evaluate(context.Background(), "abc")
		assert.ErrorIs(t, err, domain.ErrEvaluator)
	})
}
