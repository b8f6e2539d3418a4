package flow

import (
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/distribution"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// FromMatrix 将OD矩阵展开为车流生成器
// 功能：对矩阵中每个流量为正的OD对（起终点不同）生成一个从起点到终点的车流
// 参数：m-OD矩阵配置，distributions-类型分布注册表，rng-随机数引擎，
// flowNoise-constant模式是否加入扰动，fixedOrder-是否按确定性顺序选择车辆类型
// 返回：车流生成器列表，矩阵不合法时返回nil
// 说明：所有生成器共享矩阵上配置的时间范围、生成模式与车辆类型，最大数量不限
func FromMatrix(
	m *config.OriginDestinationMatrix, distributions *distribution.Registry,
	rng *randengine.Engine, flowNoise, fixedOrder bool,
) []*Generator {
	if m == nil {
		return nil
	}
	if len(m.OdValues) > len(m.Points) {
		log.Warnf("od matrix has %d rows but only %d points, ignore it", len(m.OdValues), len(m.Points))
		return nil
	}
	types := distributions.Resolve(m.Types, m.TypeDistribution)
	if len(types) == 0 {
		log.Warn("od matrix without vehicle types, ignore it")
		return nil
	}
	var res []*Generator
	for i, row := range m.OdValues {
		for j, value := range row {
			if i == j || value <= 0 || j >= len(m.Points) {
				continue
			}
			from, to := m.Points[i], m.Points[j]
			if from == nil || to == nil {
				continue
			}
			v := &config.Vehicle{
				StartingTime: m.StartingTime,
				MaxTime:      m.MaxTime,
				TargetFlow:   value,
				SpawningMode: m.SpawningMode,
				Origin:       from.Position,
				Destination:  to.Position,
				DepartSpeed:  m.DepartSpeed,
			}
			// 每个生成器持有独立的类型拷贝，补全原型时互不影响
			res = append(res, New(v, copyTypes(types), rng, flowNoise, fixedOrder))
			log.Debugf("od flow %s -> %s: %.1f veh/h", from.Name, to.Name, value)
		}
	}
	return res
}

func copyTypes(types []*config.Prototype) []*config.Prototype {
	res := make([]*config.Prototype, len(types))
	for i, t := range types {
		res[i] = t.Copy()
	}
	return res
}
