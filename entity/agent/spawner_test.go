package agent

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
	t     int64
	names *entity.NameGenerator
	sent  []*entity.AgentRegistration
	err   error
}

func (c *fakeContext) Time() int64                          { return c.t }
func (c *fakeContext) NextName(kind entity.UnitKind) string { return c.names.Next(kind) }
func (c *fakeContext) Emit(ia entity.Interaction) error {
	if c.err != nil {
		return entity.NewFederateError(ia, c.err)
	}
	c.sent = append(c.sent, ia.(*entity.AgentRegistration))
	return nil
}

type lookup map[string]*config.Prototype

func (l lookup) PrototypeByName(name string) *config.Prototype { return l[name] }

func TestSpawnOnceAfterStart(t *testing.T) {
	s := New(&config.Agent{Name: "Walker", StartingTime: 5, Origin: &config.Position{AoiID: lo.ToPtr[int32](7)}})
	s.FillInPrototype(lookup{"Walker": {Name: "Walker", Group: lo.ToPtr("peds"), Applications: []string{"app"}}})
	s.Configure(nil)
	ctx := &fakeContext{names: entity.NewNameGenerator()}

	ctx.t = 4e9
	exhausted, err := s.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.False(t, exhausted)
	assert.Empty(t, ctx.sent)

	ctx.t = 6e9
	exhausted, err = s.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.True(t, exhausted)
	require.Len(t, ctx.sent, 1)
	r := ctx.sent[0]
	assert.Equal(t, "agent_0", r.Name)
	assert.Equal(t, "peds", r.Group)
	assert.Equal(t, []string{"app"}, r.Applications)
	assert.Equal(t, int32(7), *r.Origin.AoiID)
	assert.Equal(t, DefaultWalkingSpeed, r.WalkingSpeed)
	assert.Equal(t, int64(6e9), r.Time)

	exhausted, _ = s.TimeAdvance(ctx)
	assert.True(t, exhausted)
	assert.Len(t, ctx.sent, 1)
}

func TestOwnConfigWins(t *testing.T) {
	s := New(&config.Agent{Name: "Walker", Group: lo.ToPtr("mine"), Applications: []string{}, WalkingSpeed: lo.ToPtr(2.)})
	s.FillInPrototype(lookup{"Walker": {Name: "Walker", Group: lo.ToPtr("peds"), Applications: []string{"app"}}})
	ctx := &fakeContext{names: entity.NewNameGenerator()}
	_, err := s.TimeAdvance(ctx)
	require.NoError(t, err)
	require.Len(t, ctx.sent, 1)
	assert.Equal(t, "mine", ctx.sent[0].Group)
	assert.Empty(t, ctx.sent[0].Applications)
	assert.Equal(t, 2., ctx.sent[0].WalkingSpeed)
}

func TestMissingPrototype(t *testing.T) {
	s := New(&config.Agent{Name: "Ghost"})
	s.FillInPrototype(lookup{})
	ctx := &fakeContext{names: entity.NewNameGenerator()}
	exhausted, err := s.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.True(t, exhausted)
	require.Len(t, ctx.sent, 1)
	assert.Equal(t, "", ctx.sent[0].Group)
}

func TestDisabledAfterEnd(t *testing.T) {
	s := New(&config.Agent{Name: "Late", StartingTime: 100})
	s.Configure(&config.MappingMeta{End: lo.ToPtr(50.)})
	ctx := &fakeContext{names: entity.NewNameGenerator(), t: 200e9}
	exhausted, err := s.TimeAdvance(ctx)
	assert.NoError(t, err)
	assert.True(t, exhausted)
	assert.Empty(t, ctx.sent)
}

func TestEmitError(t *testing.T) {
	s := New(&config.Agent{Name: "Walker"})
	ctx := &fakeContext{names: entity.NewNameGenerator(), err: errors.New("down")}
	exhausted, err := s.TimeAdvance(ctx)
	assert.False(t, exhausted)
	assert.ErrorIs(t, err, entity.ErrFederate)
}
