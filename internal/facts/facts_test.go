package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoCog/r9c/internal/membrane"
)

// testRecords is a small registry snapshot: 1 is the root of 2, 2 of 3,
// and 4 stands alone sharing a shape product with 1.
func testRecords() []membrane.Record {
	return []membrane.Record{
		{ID: 1, Parent: 0, Factors: []uint32{2, 2, 3}, Version: 1, Energy: 100,
			Objects: []string{"ion", "proton"}, Product: 12, Size: 2, Dims: 2},
		{ID: 2, Parent: 1, Factors: []uint32{2}, Version: 3, Energy: 100,
			Objects: []string{"ion"}, Product: 2, Size: 1, Dims: 1},
		{ID: 3, Parent: 2, Factors: []uint32{5}, Version: 1, Energy: 100,
			Objects: []string{}, Product: 5, Size: 1, Dims: 1},
		{ID: 4, Parent: 0, Factors: []uint32{3, 2, 2}, Version: 1, Energy: 100,
			Objects: []string{}, Product: 12, Size: 2, Dims: 2},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	require.NoError(t, err)
	require.NoError(t, e.Rebuild(testRecords()))
	return e
}

func TestQueryBasePredicates(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Query("membrane")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	rows, err = e.Query("membrane_parent")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = e.Query("membrane_object")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// One factor row per signature position.
	rows, err = e.Query("membrane_factor")
	require.NoError(t, err)
	assert.Len(t, rows, 8)
}

func TestAncestorClosure(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Query("membrane_ancestor")
	require.NoError(t, err)
	// (2,1), (3,2), (3,1)
	assert.Len(t, rows, 3)

	rows, err = e.Query("membrane_ancestor(3, X)")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, int64(3), row.Args[0])
	}
}

func TestReshapeCompatiblePairs(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Query("reshape_compatible")
	require.NoError(t, err)
	// Only 1 and 4 share a product; reported once, smaller id first.
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Args[0])
	assert.Equal(t, int64(4), rows[0].Args[1])
}

func TestSharesObject(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Query("shares_object")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Args[0])
	assert.Equal(t, int64(2), rows[0].Args[1])
	assert.Equal(t, "ion", rows[0].Args[2])
}

func TestQueryPatternConstants(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Query(`membrane_object(1, X)`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = e.Query(`membrane_object(X, "ion")`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = e.Query(`membrane_object(3, X)`)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryUnknownPredicate(t *testing.T) {
	e := newTestEngine(t)

	rows, err := e.Query("no_such_predicate")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryBeforeRebuild(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)

	_, err = e.Query("membrane")
	assert.Error(t, err)
	_, err = e.QueryAll()
	assert.Error(t, err)
}

func TestQueryBadPattern(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Query("membrane(((")
	assert.Error(t, err)
}

func TestQueryAll(t *testing.T) {
	e := newTestEngine(t)

	all, err := e.QueryAll()
	require.NoError(t, err)
	assert.Contains(t, all, "membrane")
	assert.Contains(t, all, "membrane_ancestor")
	assert.Contains(t, all, "shares_object")
	assert.Len(t, all["membrane"], 4)
}

func TestEDBCount(t *testing.T) {
	e := newTestEngine(t)
	// 4 membrane + 4 shape + 2 parent + 3 object + 8 factor = 21.
	assert.Equal(t, 21, e.EDBCount())
}

func TestFactString(t *testing.T) {
	f := Fact{Predicate: "membrane_object", Args: []interface{}{int64(1), "ion"}}
	assert.Equal(t, `membrane_object(1, "ion").`, f.String())

	v := Fact{Predicate: "membrane_ancestor", Args: []interface{}{int64(3), "?X"}}
	assert.Equal(t, `membrane_ancestor(3, X).`, v.String())
}

func TestRebuildFromStoreSnapshot(t *testing.T) {
	s, err := membrane.NewStoreWithSeed(membrane.DefaultLimits(), 7)
	require.NoError(t, err)

	root, err := s.Create([]uint32{2, 3})
	require.NoError(t, err)
	child, err := s.CreateChild(root, []uint32{2})
	require.NoError(t, err)
	grand, err := s.CreateChild(child, []uint32{5})
	require.NoError(t, err)
	require.NoError(t, s.AddObject(grand, "ion"))

	e, err := NewEngine()
	require.NoError(t, err)
	require.NoError(t, e.Rebuild(s.Snapshot()))

	rows, err := e.Query("membrane_ancestor")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = e.Query(`membrane_object(X, "ion")`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(grand), rows[0].Args[0])
}
