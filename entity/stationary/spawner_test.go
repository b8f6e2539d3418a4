package stationary

import (
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

type fakeContext struct {
	names *entity.NameGenerator
	sent  []entity.Interaction
	err   error
}

func (c *fakeContext) Time() int64                          { return 0 }
func (c *fakeContext) NextName(kind entity.UnitKind) string { return c.names.Next(kind) }
func (c *fakeContext) Emit(ia entity.Interaction) error {
	if c.err != nil {
		return entity.NewFederateError(ia, c.err)
	}
	c.sent = append(c.sent, ia)
	return nil
}

type lookup map[string]*config.Prototype

func (l lookup) PrototypeByName(name string) *config.Prototype { return l[name] }

func sample() *config.Mapping {
	return &config.Mapping{
		RoadSideUnits: []*config.RoadSideUnit{
			{Name: "Rsu", Position: &config.Position{LaneID: lo.ToPtr[int32](3), S: 10}},
			nil,
		},
		TrafficManagementCenters: []*config.TrafficManagementCenter{
			{Name: "Tmc", InductionLoops: []string{"loop"}},
		},
		Servers: []*config.Server{{Name: "Server", Group: lo.ToPtr("cloud")}},
		ChargingStations: []*config.ChargingStation{
			{Name: "Cs", Operator: "op", ChargingSpots: []*config.ChargingSpot{{ID: "s0"}, nil}},
		},
	}
}

func TestBuildSkipsNil(t *testing.T) {
	spawners := Build(sample())
	require.Len(t, spawners, 4)
	assert.Equal(t,
		[]entity.UnitKind{entity.KindRsu, entity.KindTmc, entity.KindServer, entity.KindChargingStation},
		lo.Map(spawners, func(s Spawner, _ int) entity.UnitKind { return s.Kind() }),
	)
	assert.Empty(t, Build(&config.Mapping{}))
}

func TestInitOnce(t *testing.T) {
	spawners := Build(sample())
	lk := lookup{"Rsu": {Name: "Rsu", Group: lo.ToPtr("rsus"), Applications: []string{"v2x"}}}
	for _, s := range spawners {
		s.FillInPrototype(lk)
	}
	ctx := &fakeContext{names: entity.NewNameGenerator()}
	for i := 0; i < 3; i++ {
		for _, s := range spawners {
			require.NoError(t, s.Init(ctx))
			assert.True(t, s.Executed())
		}
	}
	require.Len(t, ctx.sent, 4)

	rsu := ctx.sent[0].(*entity.RsuRegistration)
	assert.Equal(t, "rsu_0", rsu.Name)
	assert.Equal(t, "rsus", rsu.Group)
	assert.Equal(t, []string{"v2x"}, rsu.Applications)
	assert.Equal(t, 10., rsu.Position.S)

	tmc := ctx.sent[1].(*entity.TmcRegistration)
	assert.Equal(t, "tmc_0", tmc.Name)
	assert.Equal(t, []string{"loop"}, tmc.InductionLoops)

	server := ctx.sent[2].(*entity.ServerRegistration)
	assert.Equal(t, "server_0", server.Name)
	assert.Equal(t, "cloud", server.Group)

	cs := ctx.sent[3].(*entity.ChargingStationRegistration)
	assert.Equal(t, "cs_0", cs.Name)
	assert.Equal(t, "op", cs.Operator)
	assert.Len(t, cs.ChargingSpots, 1)
}

func TestInitFailureCanRetry(t *testing.T) {
	s := NewServer(&config.Server{Name: "Server"})
	ctx := &fakeContext{names: entity.NewNameGenerator(), err: errors.New("down")}
	err := s.Init(ctx)
	assert.ErrorIs(t, err, entity.ErrFederate)
	var fe *entity.FederateError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, entity.TypeServerRegistration, fe.Type)
	assert.False(t, s.Executed())
}
