package flow

import (
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/distribution"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

type fakeContext struct {
	t     int64
	names *entity.NameGenerator
	sent  []*entity.VehicleRegistration
	err   error
}

func newFakeContext() *fakeContext {
	return &fakeContext{names: entity.NewNameGenerator()}
}

func (c *fakeContext) Time() int64                          { return c.t }
func (c *fakeContext) NextName(kind entity.UnitKind) string { return c.names.Next(kind) }
func (c *fakeContext) Emit(ia entity.Interaction) error {
	if c.err != nil {
		return entity.NewFederateError(ia, c.err)
	}
	c.sent = append(c.sent, ia.(*entity.VehicleRegistration))
	return nil
}

type lookup map[string]*config.Prototype

func (l lookup) PrototypeByName(name string) *config.Prototype { return l[name] }

func seconds(s float64) int64 { return int64(s * 1e9) }

func car() []*config.Prototype {
	return []*config.Prototype{{Name: "Car", Weight: lo.ToPtr(1.)}}
}

func run(t *testing.T, g *Generator, ctx *fakeContext, until, step float64) {
	for s := 0.; s <= until; s += step {
		ctx.t = seconds(s)
		_, err := g.TimeAdvance(ctx)
		require.NoError(t, err)
	}
}

func TestConstantFlow(t *testing.T) {
	g := New(&config.Vehicle{
		StartingTime:      10,
		TargetFlow:        3600,
		MaxNumberVehicles: lo.ToPtr(5),
	}, car(), randengine.New(1), false, false)
	g.Configure(nil)
	ctx := newFakeContext()

	ctx.t = seconds(9)
	exhausted, err := g.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.False(t, exhausted)
	assert.Empty(t, ctx.sent)

	// 每秒一辆
	ctx.t = seconds(12)
	exhausted, err = g.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.False(t, exhausted)
	require.Len(t, ctx.sent, 3)
	assert.Equal(t, []string{"veh_0", "veh_1", "veh_2"}, lo.Map(ctx.sent, func(r *entity.VehicleRegistration, _ int) string { return r.Name }))

	ctx.t = seconds(100)
	exhausted, err = g.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.True(t, exhausted)
	assert.Len(t, ctx.sent, 5)
	assert.Equal(t, 5, g.Spawned())

	// 耗尽后不再发出
	exhausted, _ = g.TimeAdvance(ctx)
	assert.True(t, exhausted)
	assert.Len(t, ctx.sent, 5)
}

func TestFlowStopsAtMaxTime(t *testing.T) {
	g := New(&config.Vehicle{
		StartingTime: 0,
		MaxTime:      lo.ToPtr(10.),
		TargetFlow:   720, // 5秒一辆
	}, car(), randengine.New(1), false, false)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 60, 1)
	assert.Len(t, ctx.sent, 3) // 0, 5, 10
	assert.True(t, g.Exhausted())
}

func TestFlowRespectsGlobalEnd(t *testing.T) {
	g := New(&config.Vehicle{TargetFlow: 720}, car(), randengine.New(1), false, false)
	g.Configure(&config.MappingMeta{End: lo.ToPtr(4.)})
	ctx := newFakeContext()
	run(t, g, ctx, 60, 1)
	assert.Len(t, ctx.sent, 1)
}

func TestDefaultTargetFlow(t *testing.T) {
	g := New(&config.Vehicle{MaxTime: lo.ToPtr(60.)}, car(), randengine.New(1), false, false)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 60, 1)
	// 600辆/小时，6秒一辆
	assert.Len(t, ctx.sent, 11)
}

func TestRampModesSpawnExpectedTotal(t *testing.T) {
	for _, mode := range []config.SpawningMode{
		config.SpawningModeGrow,
		config.SpawningModeShrink,
		config.SpawningModeGrowAndShrink,
	} {
		g := New(&config.Vehicle{
			MaxTime:      lo.ToPtr(3600.),
			TargetFlow:   360,
			SpawningMode: mode,
		}, car(), randengine.New(1), false, false)
		g.Configure(nil)
		ctx := newFakeContext()
		run(t, g, ctx, 3600, 10)
		// 线性斜坡下的总需求为目标流量*时长/2
		assert.InDelta(t, 180, len(ctx.sent), 2, "mode=%s", mode)
		assert.True(t, g.Exhausted(), "mode=%s", mode)
	}
}

func TestGrowSpawnsMoreLater(t *testing.T) {
	g := New(&config.Vehicle{
		MaxTime:      lo.ToPtr(1000.),
		TargetFlow:   720,
		SpawningMode: config.SpawningModeGrow,
	}, car(), randengine.New(1), false, false)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 500, 1)
	first := len(ctx.sent)
	run(t, g, ctx, 1000, 1)
	assert.Greater(t, len(ctx.sent)-first, 2*first)
}

func TestRampWithoutEndFallsBackToConstant(t *testing.T) {
	g := New(&config.Vehicle{
		TargetFlow:   3600,
		SpawningMode: config.SpawningModeShrink,
	}, car(), randengine.New(1), false, false)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 9, 1)
	assert.Len(t, ctx.sent, 10)
}

func TestPoissonFlow(t *testing.T) {
	g := New(&config.Vehicle{
		MaxTime:      lo.ToPtr(3600.),
		TargetFlow:   1800,
		SpawningMode: config.SpawningModePoisson,
	}, car(), randengine.New(3), false, false)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 3600, 5)
	assert.InDelta(t, 1800, len(ctx.sent), 150)
}

func TestFlowNoiseKeepsRate(t *testing.T) {
	g := New(&config.Vehicle{
		MaxTime:    lo.ToPtr(100.),
		TargetFlow: 3600,
	}, car(), randengine.New(3), true, false)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 100, 1)
	assert.InDelta(t, 100, len(ctx.sent), 1)
}

func TestTypeSelectionAndPrototype(t *testing.T) {
	types := []*config.Prototype{
		{Name: "Car", Weight: lo.ToPtr(1.)},
		{Name: "Bus", Weight: lo.ToPtr(1.), Length: lo.ToPtr(12.)},
	}
	g := New(&config.Vehicle{
		TargetFlow: 3600,
		Group:      lo.ToPtr("flow"),
	}, types, nil, false, true)
	g.FillInPrototype(lookup{
		"Car": {Name: "Car", MaxSpeed: lo.ToPtr(30.), Applications: []string{"app"}},
		"Bus": {Name: "Bus", Length: lo.ToPtr(15.), VehicleClass: "bus"},
	})
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 3, 1)
	require.Len(t, ctx.sent, 4)
	// 确定性顺序交替选择
	assert.Equal(t, "Car", ctx.sent[0].VehicleType.Name)
	assert.Equal(t, "Bus", ctx.sent[1].VehicleType.Name)
	assert.Equal(t, 30., ctx.sent[0].VehicleType.MaxSpeed)
	assert.Equal(t, []string{"app"}, ctx.sent[0].Applications)
	assert.Equal(t, 12., ctx.sent[1].VehicleType.Length)
	assert.Equal(t, "bus", ctx.sent[1].VehicleType.VehicleClass)
	assert.Equal(t, "flow", ctx.sent[1].Group)

	types2 := map[string]entity.VehicleType{}
	g.CollectVehicleTypes(types2)
	assert.Len(t, types2, 2)
	assert.Equal(t, entity.DefaultMaxSpeed, types2["Bus"].MaxSpeed)
}

func TestUnweightedTypesAreUniform(t *testing.T) {
	g := New(&config.Vehicle{TargetFlow: 3600}, []*config.Prototype{{Name: "A"}, {Name: "B"}}, nil, false, true)
	g.Configure(nil)
	ctx := newFakeContext()
	run(t, g, ctx, 1, 1)
	require.Len(t, ctx.sent, 2)
	assert.Equal(t, "A", ctx.sent[0].VehicleType.Name)
	assert.Equal(t, "B", ctx.sent[1].VehicleType.Name)
}

func TestEmitErrorIsReturned(t *testing.T) {
	g := New(&config.Vehicle{TargetFlow: 3600}, car(), randengine.New(1), false, false)
	g.Configure(nil)
	ctx := newFakeContext()
	ctx.err = errors.New("closed")
	exhausted, err := g.TimeAdvance(ctx)
	assert.False(t, exhausted)
	assert.ErrorIs(t, err, entity.ErrFederate)
	assert.Equal(t, 0, g.Spawned())
}

func TestRandomizeStartingTime(t *testing.T) {
	rng := randengine.New(4)
	for i := 0; i < 100; i++ {
		s := RandomizeStartingTime(rng, 10)
		assert.GreaterOrEqual(t, s, 0.)
		assert.LessOrEqual(t, s, 30.)
		assert.Equal(t, float64(int(s)), s)
	}
}

func TestFromMatrix(t *testing.T) {
	dists := distribution.NewRegistry(map[string][]*config.Prototype{
		"Mix": {{Name: "Car", Weight: lo.ToPtr(1.)}},
	})
	m := &config.OriginDestinationMatrix{
		Points: []*config.OriginDestinationPoint{
			{Name: "p0", Position: &config.Position{LaneID: lo.ToPtr[int32](1)}},
			{Name: "p1", Position: &config.Position{LaneID: lo.ToPtr[int32](2)}},
			{Name: "p2", Position: &config.Position{LaneID: lo.ToPtr[int32](3)}},
		},
		OdValues: [][]float64{
			{100, 3600, 0},
			{0, 0, 1800},
		},
		MaxTime:          lo.ToPtr(10.),
		TypeDistribution: "Mix",
	}
	gens := FromMatrix(m, dists, randengine.New(1), false, false)
	require.Len(t, gens, 2)
	ctx := newFakeContext()
	for _, g := range gens {
		g.Configure(nil)
		run(t, g, ctx, 10, 1)
	}
	// 0->1: 每秒一辆，1->2: 每2秒一辆
	assert.Len(t, ctx.sent, 11+6)
	assert.Equal(t, int32(1), *ctx.sent[0].Origin.LaneID)
	assert.Equal(t, int32(2), *ctx.sent[0].Destination.LaneID)
	assert.Equal(t, int32(3), *ctx.sent[len(ctx.sent)-1].Destination.LaneID)
}

func TestFromMatrixWithoutTypes(t *testing.T) {
	m := &config.OriginDestinationMatrix{
		Points:   []*config.OriginDestinationPoint{{Name: "a"}, {Name: "b"}},
		OdValues: [][]float64{{0, 10}},
	}
	assert.Empty(t, FromMatrix(m, distribution.NewRegistry(nil), randengine.New(1), false, false))
	assert.Empty(t, FromMatrix(nil, distribution.NewRegistry(nil), randengine.New(1), false, false))
}
