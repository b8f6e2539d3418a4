// 固定设施生成器：路侧单元、交通管理中心、服务器、充电站
package stationary

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// Spawner 固定设施生成器接口
// 说明：每个固定设施只注册一次，Init在第一次调用时发出注册消息，之后的调用不做任何事
type Spawner interface {
	Kind() entity.UnitKind
	PrototypeName() string
	// FillInPrototype 绑定同名原型，不存在时只使用自身配置
	FillInPrototype(lookup entity.IPrototypeLookup)
	// Init 发出注册消息
	Init(ctx entity.ISpawnContext) error
	Executed() bool
}

// base 各类固定设施生成器的公共部分
type base struct {
	kind         entity.UnitKind
	name         string   // 原型名
	group        *string  // 自身配置的分组
	applications []string // 自身配置的应用
	prototype    *config.Prototype
	executed     bool
}

func (b *base) Kind() entity.UnitKind { return b.kind }
func (b *base) PrototypeName() string { return b.name }
func (b *base) Executed() bool        { return b.executed }

func (b *base) FillInPrototype(lookup entity.IPrototypeLookup) {
	b.prototype = lookup.PrototypeByName(b.name)
	if b.prototype == nil {
		log.Infof("no prototype for %s %s, use its own config", b.kind, b.name)
	}
}

// registration 生成注册消息的公共字段，分组与应用优先使用自身配置
func (b *base) registration(ctx entity.ISpawnContext) entity.UnitRegistration {
	group, apps := b.group, b.applications
	if p := b.prototype; p != nil {
		group = lo.CoalesceOrEmpty(group, p.Group)
		if apps == nil {
			apps = p.Applications
		}
	}
	return entity.UnitRegistration{
		Header:       entity.Header{Time: ctx.Time()},
		Name:         ctx.NextName(b.kind),
		Group:        lo.FromPtr(group),
		Applications: apps,
	}
}

// emit 发出注册消息，只执行一次
func (b *base) emit(ctx entity.ISpawnContext, build func(entity.UnitRegistration) entity.Interaction) error {
	if b.executed {
		return nil
	}
	if err := ctx.Emit(build(b.registration(ctx))); err != nil {
		return err
	}
	b.executed = true
	return nil
}

// RoadSideUnit 路侧单元生成器
type RoadSideUnit struct {
	base
	config *config.RoadSideUnit
}

func NewRoadSideUnit(c *config.RoadSideUnit) *RoadSideUnit {
	return &RoadSideUnit{
		base:   base{kind: entity.KindRsu, name: c.Name, group: c.Group, applications: c.Applications},
		config: c,
	}
}

func (s *RoadSideUnit) Init(ctx entity.ISpawnContext) error {
	return s.emit(ctx, func(r entity.UnitRegistration) entity.Interaction {
		return &entity.RsuRegistration{UnitRegistration: r, Position: s.config.Position}
	})
}

// TrafficManagementCenter 交通管理中心生成器
type TrafficManagementCenter struct {
	base
	config *config.TrafficManagementCenter
}

func NewTrafficManagementCenter(c *config.TrafficManagementCenter) *TrafficManagementCenter {
	return &TrafficManagementCenter{
		base:   base{kind: entity.KindTmc, name: c.Name, group: c.Group, applications: c.Applications},
		config: c,
	}
}

func (s *TrafficManagementCenter) Init(ctx entity.ISpawnContext) error {
	return s.emit(ctx, func(r entity.UnitRegistration) entity.Interaction {
		return &entity.TmcRegistration{
			UnitRegistration:  r,
			InductionLoops:    s.config.InductionLoops,
			LaneAreaDetectors: s.config.LaneAreaDetectors,
		}
	})
}

// Server 服务器生成器
type Server struct {
	base
}

func NewServer(c *config.Server) *Server {
	return &Server{
		base: base{kind: entity.KindServer, name: c.Name, group: c.Group, applications: c.Applications},
	}
}

func (s *Server) Init(ctx entity.ISpawnContext) error {
	return s.emit(ctx, func(r entity.UnitRegistration) entity.Interaction {
		return &entity.ServerRegistration{UnitRegistration: r}
	})
}

// ChargingStation 充电站生成器
type ChargingStation struct {
	base
	config *config.ChargingStation
}

func NewChargingStation(c *config.ChargingStation) *ChargingStation {
	return &ChargingStation{
		base:   base{kind: entity.KindChargingStation, name: c.Name, group: c.Group, applications: c.Applications},
		config: c,
	}
}

func (s *ChargingStation) Init(ctx entity.ISpawnContext) error {
	return s.emit(ctx, func(r entity.UnitRegistration) entity.Interaction {
		return &entity.ChargingStationRegistration{
			UnitRegistration: r,
			Position:         s.config.Position,
			Operator:         s.config.Operator,
			ChargingSpots:    lo.Compact(s.config.ChargingSpots),
		}
	})
}
