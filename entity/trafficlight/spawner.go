// 信号灯行为分配
package trafficlight

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// Spawner 信号灯行为生成器
// 功能：描述分配给信号灯组的分组标签与应用，可以指定目标信号灯组，或按权重参与随机分配
type Spawner struct {
	config    *config.TrafficLight
	key       string // 目标信号灯组ID，未指定时为自动编号
	prototype *config.Prototype
}

// New 创建信号灯行为生成器
// 参数：c-信号灯配置，key-目标信号灯组ID或自动编号
func New(c *config.TrafficLight, key string) *Spawner {
	return &Spawner{config: c, key: key}
}

// Build 为配置中的每个信号灯创建生成器
// 说明：指定了tl_group_id的以其为键，否则以自动递增的编号为键；nil条目被跳过
func Build(configs []*config.TrafficLight) []*Spawner {
	res := make([]*Spawner, 0, len(configs))
	auto := 0
	for _, c := range configs {
		if c == nil {
			continue
		}
		key := lo.FromPtr(c.TlGroupID)
		if key == "" {
			key = autoKey(auto)
			auto++
		}
		res = append(res, New(c, key))
	}
	return res
}

// Key 生成器的键
func (s *Spawner) Key() string {
	return s.key
}

// TargetGroupID 指定的目标信号灯组ID，未指定时为空
func (s *Spawner) TargetGroupID() string {
	return lo.FromPtr(s.config.TlGroupID)
}

func (s *Spawner) PrototypeName() string {
	return s.config.Name
}

// FillInPrototype 绑定同名原型，不存在时只使用自身配置
func (s *Spawner) FillInPrototype(lookup entity.IPrototypeLookup) {
	s.prototype = lookup.PrototypeByName(s.config.Name)
	if s.prototype == nil {
		log.Infof("no prototype for traffic light %s, use its own config", s.config.Name)
	}
}

// Weight 参与随机分配的权重，优先使用自身配置，其次为原型，都未配置时为0
func (s *Spawner) Weight() float64 {
	if s.config.Weight != nil {
		return *s.config.Weight
	}
	return s.prototype.GetWeight()
}

// Group 分组标签，未配置时为空
func (s *Spawner) Group() string {
	if s.config.Group != nil {
		return *s.config.Group
	}
	if s.prototype != nil {
		return lo.FromPtr(s.prototype.Group)
	}
	return ""
}

// Applications 应用列表
func (s *Spawner) Applications() []string {
	if s.config.Applications == nil && s.prototype != nil {
		return s.prototype.Applications
	}
	return s.config.Applications
}
