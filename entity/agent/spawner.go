// 行人生成器
package agent

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// DefaultWalkingSpeed 未配置步行速度时的默认值（米/秒）
const DefaultWalkingSpeed = 1.34

// Spawner 行人生成器
// 功能：在开始时间到达后发出一条行人生成消息，随后耗尽
type Spawner struct {
	config    *config.Agent
	prototype *config.Prototype
	start     int64 // 开始时间（纳秒）
	disabled  bool
	spawned   bool
}

// New 创建行人生成器
func New(c *config.Agent) *Spawner {
	return &Spawner{
		config: c,
		start:  int64(math.Round(c.StartingTime * 1e9)),
	}
}

// PrototypeName 对应的原型名
func (s *Spawner) PrototypeName() string {
	return s.config.Name
}

// FillInPrototype 绑定同名原型，不存在时只使用自身配置
func (s *Spawner) FillInPrototype(lookup entity.IPrototypeLookup) {
	s.prototype = lookup.PrototypeByName(s.config.Name)
	if s.prototype == nil {
		log.Infof("no prototype for agent %s, use its own config", s.config.Name)
	}
}

// Configure 应用全局元参数，开始时间晚于全局结束时间的行人被禁用
func (s *Spawner) Configure(meta *config.MappingMeta) {
	if meta != nil && meta.End != nil && s.config.StartingTime > *meta.End {
		log.Infof("agent %s starts after the end time, disable it", s.config.Name)
		s.disabled = true
	}
}

// TimeAdvance 开始时间到达后发出行人生成消息
// 返回：是否已耗尽，消息发送错误
func (s *Spawner) TimeAdvance(ctx entity.ISpawnContext) (bool, error) {
	if s.disabled || s.spawned {
		return true, nil
	}
	now := ctx.Time()
	if now < s.start {
		return false, nil
	}
	group, apps := s.config.Group, s.config.Applications
	if p := s.prototype; p != nil {
		group = lo.CoalesceOrEmpty(group, p.Group)
		if apps == nil {
			apps = p.Applications
		}
	}
	ia := &entity.AgentRegistration{
		UnitRegistration: entity.UnitRegistration{
			Header:       entity.Header{Time: now},
			Name:         ctx.NextName(entity.KindAgent),
			Group:        lo.FromPtr(group),
			Applications: apps,
		},
		Origin:       s.config.Origin,
		Destination:  s.config.Destination,
		WalkingSpeed: lo.FromPtrOr(s.config.WalkingSpeed, DefaultWalkingSpeed),
	}
	if err := ctx.Emit(ia); err != nil {
		return false, err
	}
	s.spawned = true
	return true, nil
}
