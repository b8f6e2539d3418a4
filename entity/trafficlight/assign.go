package trafficlight

import (
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/weighting"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// Assign 为每个信号灯组分配行为并发出注册消息
// 功能：一次性完成所有信号灯组的行为分配
// 参数：spawners-信号灯行为生成器，topology-信号灯组拓扑，rng-随机数引擎，ctx-生成器运行时上下文
// 返回：消息发送错误（*entity.FederateError），出错时立即返回
// 算法说明：
// 1. 用权重为正的生成器构建随机加权选择器（不受fixed_order影响），没有则不随机分配
// 2. 对每个信号灯组：优先使用目标组ID与组ID相同的生成器（同一ID有多个时取最后一个），
// 否则从加权选择器中抽取，都没有时不分配（应用列表为空）
// 3. 分组标签为生成器配置的分组，未配置或未分配时为组ID本身
// 4. 每个组发出一条注册消息，携带新生成的单元名、分组标签、应用、组拓扑与受控车道
func Assign(
	spawners []*Spawner, topology *Topology,
	rng *randengine.Engine, ctx entity.ISpawnContext,
) error {
	explicit := make(map[string]*Spawner)
	for _, s := range spawners {
		id := s.TargetGroupID()
		if id == "" {
			continue
		}
		if _, ok := explicit[id]; ok {
			log.Warnf("duplicated traffic light config for group %s, the later one overrides", id)
		}
		explicit[id] = s
	}
	selector := weighting.New(weighting.NewItems(spawners, (*Spawner).Weight), rng, false)
	for _, g := range topology.Groups {
		s, ok := explicit[g.GroupID]
		if !ok && selector != nil {
			s = selector.Next()
		}
		group, apps := g.GroupID, []string{}
		if s != nil {
			if sg := s.Group(); sg != "" {
				group = sg
			}
			if sa := s.Applications(); sa != nil {
				apps = sa
			}
		}
		ia := &entity.TrafficLightRegistration{
			UnitRegistration: entity.UnitRegistration{
				Header:       entity.Header{Time: ctx.Time()},
				Name:         ctx.NextName(entity.KindTrafficLight),
				Group:        group,
				Applications: apps,
			},
			TrafficLightGroup: g,
			LanesControlled:   topology.LanesControlled(g.GroupID),
		}
		if err := ctx.Emit(ia); err != nil {
			log.Errorf("register traffic light group %s failed: %v", g.GroupID, err)
			return err
		}
	}
	return nil
}
