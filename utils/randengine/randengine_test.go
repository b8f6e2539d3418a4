package randengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Gaussian(10, 2), b.Gaussian(10, 2))
		assert.Equal(t, a.Uniform(-20, 20), b.Uniform(-20, 20))
	}
}

func TestUniformRange(t *testing.T) {
	e := New(1)
	for i := 0; i < 1000; i++ {
		v := e.Uniform(-20, 20)
		assert.GreaterOrEqual(t, v, -20.)
		assert.Less(t, v, 20.)
	}
}

func TestDiscreteDistribution(t *testing.T) {
	e := New(7)
	counts := make([]int, 3)
	for i := 0; i < 10000; i++ {
		counts[e.DiscreteDistribution([]float64{1, 0, 3})]++
	}
	assert.Zero(t, counts[1])
	assert.InDelta(t, 0.25, float64(counts[0])/10000, 0.03)
	assert.InDelta(t, 0.75, float64(counts[2])/10000, 0.03)
}

func TestExponentialPositive(t *testing.T) {
	e := New(3)
	sum := 0.
	for i := 0; i < 10000; i++ {
		v := e.Exponential(6)
		assert.GreaterOrEqual(t, v, 0.)
		sum += v
	}
	assert.InDelta(t, 6, sum/10000, 0.3)
}
