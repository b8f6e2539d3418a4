package distribution

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

func sample() []*config.Prototype {
	return []*config.Prototype{
		{Name: "A", Weight: lo.ToPtr(0.5)},
		{Name: "B", Weight: lo.ToPtr(0.2)},
		{Name: "C"},
		{Name: "D", Weight: lo.ToPtr(0.3)},
		{Name: "E", Weight: lo.ToPtr(0.)},
		{Name: "F", Weight: lo.ToPtr(1.7)},
	}
}

func TestRandomizeConservesSum(t *testing.T) {
	for _, mode := range []config.WeightResidual{config.WeightResidualProportional, config.WeightResidualLast, ""} {
		for seed := uint64(0); seed < 200; seed++ {
			types := sample()
			before := lo.SumBy(types, (*config.Prototype).GetWeight)
			Randomize(randengine.New(seed), types, mode)
			after := lo.SumBy(types, (*config.Prototype).GetWeight)
			assert.InDelta(t, before, after, 0.01, "mode=%s seed=%d", mode, seed)
			// 权重为0或未配置的条目不变
			assert.Nil(t, types[2].Weight)
			assert.Equal(t, 0., *types[4].Weight)
			for _, p := range types {
				assert.GreaterOrEqual(t, p.GetWeight(), 0.)
			}
		}
	}
}

func TestRandomizeStaysNearConfiguredWeights(t *testing.T) {
	types := sample()
	Randomize(randengine.New(1), types, config.WeightResidualProportional)
	// 总和2.7，每项扰动不超过0.027，再经比例修正
	assert.InDelta(t, 0.5, types[0].GetWeight(), 0.1)
	assert.InDelta(t, 1.7, types[5].GetWeight(), 0.1)
}

func TestRandomizeNoPositiveWeights(t *testing.T) {
	types := []*config.Prototype{{Name: "A"}, {Name: "B", Weight: lo.ToPtr(0.)}, nil}
	assert.NotPanics(t, func() {
		Randomize(randengine.New(1), types, config.WeightResidualLast)
	})
	assert.Nil(t, types[0].Weight)
	assert.Equal(t, 0., *types[1].Weight)
}

func TestRandomizeAllReproducible(t *testing.T) {
	src := map[string][]*config.Prototype{"X": sample(), "Y": sample(), "Z": sample()}
	a := NewRegistry(src)
	b := NewRegistry(src)
	a.RandomizeAll(randengine.New(9), config.WeightResidualProportional)
	b.RandomizeAll(randengine.New(9), config.WeightResidualProportional)
	for _, name := range a.Names() {
		assert.Equal(t, weights(a.ByName(name)), weights(b.ByName(name)))
	}
	// 原始配置不被修改
	assert.Equal(t, 0.5, *src["X"][0].Weight)
}
