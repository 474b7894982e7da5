package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge_Success(t *testing.T) {
	g := New()

	err := g.AddEdge(2, 1)
	assert.NoError(t, err)
	assert.True(t, g.HasEdge(2, 1))
}

func TestAddEdge_Idempotent(t *testing.T) {
	g := New()

	require.NoError(t, g.AddEdge(2, 1))
	assert.NoError(t, g.AddEdge(2, 1))
	assert.True(t, g.HasEdge(2, 1))
}

func TestAddEdge_SelfLoop(t *testing.T) {
	g := New()

	err := g.AddEdge(1, 1)
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestAddEdge_DirectCycle(t *testing.T) {
	g := New()

	require.NoError(t, g.AddEdge(2, 1))

	err := g.AddEdge(1, 2)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, uint64(1), cycleErr.TemplateID)
	assert.Equal(t, uint64(2), cycleErr.PrerequisiteTemplateID)

	// Failed insert leaves no trace.
	assert.False(t, g.HasEdge(1, 2))
}

func TestAddEdge_TransitiveCycle(t *testing.T) {
	g := New()

	// 3 depends on 2 depends on 1; closing 1 -> 3 would cycle.
	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(3, 2))

	err := g.AddEdge(1, 3)
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestRemoveEdge(t *testing.T) {
	g := New()

	require.NoError(t, g.AddEdge(2, 1))

	assert.True(t, g.RemoveEdge(2, 1))
	assert.False(t, g.HasEdge(2, 1))

	// Second removal is a not-found no-op, never an error.
	assert.False(t, g.RemoveEdge(2, 1))

	// The edge can be re-added, and reversed now that it is gone.
	assert.NoError(t, g.AddEdge(1, 2))
}

func TestTransitiveClosure_Chain(t *testing.T) {
	g := New()

	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(3, 2))

	closure := g.TransitiveClosure(3)
	assert.Len(t, closure, 2)
	assert.Contains(t, closure, uint64(1))
	assert.Contains(t, closure, uint64(2))

	assert.Empty(t, g.TransitiveClosure(1))
}

func TestTransitiveClosure_DiamondNotDoubleCounted(t *testing.T) {
	g := New()

	// 4 depends on 2 and 3, both of which depend on 1.
	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(3, 1))
	require.NoError(t, g.AddEdge(4, 2))
	require.NoError(t, g.AddEdge(4, 3))

	closure := g.TransitiveClosure(4)
	assert.Len(t, closure, 3)
}

func TestAvailableCandidates_ExcludesSelfAndDependents(t *testing.T) {
	g := New()

	// 2 and 3 depend on 1, 4 depends on 3, 5 is unrelated.
	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(3, 1))
	require.NoError(t, g.AddEdge(4, 3))

	all := []uint64{1, 2, 3, 4, 5}
	candidates := g.AvailableCandidates(1, all)
	assert.Equal(t, []uint64{5}, candidates)

	// A node with no dependents can take anything but itself.
	assert.Equal(t, []uint64{1, 2, 3, 4}, g.AvailableCandidates(5, all))
}

// TestClosureCandidateDuality checks the two reachability queries against each
// other: whenever B is in the closure of A, A must not be offered as a
// candidate prerequisite of B.
func TestClosureCandidateDuality(t *testing.T) {
	g := New()

	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(3, 2))
	require.NoError(t, g.AddEdge(4, 2))
	require.NoError(t, g.AddEdge(5, 4))

	all := []uint64{1, 2, 3, 4, 5}
	for _, a := range all {
		// Acyclicity: no node reaches itself.
		assert.NotContains(t, g.TransitiveClosure(a), a)

		for b := range g.TransitiveClosure(a) {
			assert.NotContains(t, g.AvailableCandidates(b, all), a,
				"template %d depends on %d, so %d must not be a candidate prerequisite of %d", a, b, a, b)
		}
	}
}
