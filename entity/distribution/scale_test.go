package distribution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

func TestScalerCarriesRemainder(t *testing.T) {
	s := NewScaler(0.25)
	assert.True(t, s.Enabled())
	a := s.ScaleCount(10) // 2.5
	b := s.ScaleCount(7)  // 1.75
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 4, a+b)
	assert.InDelta(t, 0.25, s.Remainder(), 1e-9)
}

func TestScalerAggregateBound(t *testing.T) {
	rng := randengine.New(5)
	for _, factor := range []float64{0.1, 0.25, 0.33, 0.7, 1.5, 2.3} {
		s := NewScaler(factor)
		total, scaled := 0, 0
		for i := 0; i < 200; i++ {
			n := rng.Intn(50)
			total += n
			scaled += s.ScaleCount(n)
		}
		exact := math.Floor(float64(total) * factor)
		assert.InDelta(t, exact, float64(scaled), 1, "factor=%v", factor)
	}
}

func TestScalerUnlimited(t *testing.T) {
	s := NewScaler(0.5)
	assert.Equal(t, config.Unlimited, s.ScaleCount(config.Unlimited))
	assert.Equal(t, 0., s.Remainder())
	assert.Equal(t, 300., s.ScaleFlow(600))
	assert.Equal(t, 4., s.ScaleFlow(7))
}

func TestScalerDisabled(t *testing.T) {
	assert.False(t, NewScaler(1).Enabled())
	assert.False(t, NewScaler(1.00005).Enabled())
	assert.True(t, NewScaler(1.001).Enabled())
}
