package weighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

func TestNewWithoutPositiveWeights(t *testing.T) {
	items := NewItems([]string{"a", "b"}, func(string) float64 { return 0 })
	assert.Empty(t, items)
	assert.Nil(t, New(items, randengine.New(1), false))
	assert.Nil(t, New([]Item[string]{{"a", -1}}, randengine.New(1), true))
}

func TestStochasticSelectorProportions(t *testing.T) {
	s := New([]Item[string]{{"a", 1}, {"b", 0}, {"c", 3}}, randengine.New(2), false)
	counts := map[string]int{}
	for i := 0; i < 8000; i++ {
		counts[s.Next()]++
	}
	assert.Zero(t, counts["b"])
	assert.InDelta(t, 0.25, float64(counts["a"])/8000, 0.03)
	assert.InDelta(t, 0.75, float64(counts["c"])/8000, 0.03)
}

func TestStochasticSelectorReproducible(t *testing.T) {
	items := []Item[int]{{1, 0.2}, {2, 0.5}, {3, 0.3}}
	a := New(items, randengine.New(11), false)
	b := New(items, randengine.New(11), false)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestDeterministicSelector(t *testing.T) {
	s := New([]Item[string]{{"a", 1}, {"b", 2}}, nil, true)
	got := []string{}
	for i := 0; i < 6; i++ {
		got = append(got, s.Next())
	}
	assert.Equal(t, []string{"b", "a", "b", "b", "a", "b"}, got)
}
