// 实体生成框架：根据配置生成车辆、行人、固定设施并分配信号灯行为
package framework

import (
	"maps"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/agent"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/distribution"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/flow"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/prototype"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/stationary"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/trafficlight"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/metrics"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/container"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// Option 框架的可选参数
type Option func(*Framework)

// WithMetrics 记录生成指标
func WithMetrics(c *metrics.Collector) Option {
	return func(f *Framework) { f.metrics = c }
}

// WithTopology 指定信号灯组拓扑
func WithTopology(t *trafficlight.Topology) Option {
	return func(f *Framework) { f.topology = t }
}

// Framework 实体生成框架
// 功能：在构造时解析全部配置并创建各类生成器，运行时由外部在每个时间步调用TimeAdvance
// 说明：只在单个协程中使用，同一次运行的全部随机决策共享构造时传入的随机数引擎
type Framework struct {
	rng     *randengine.Engine
	emitter entity.IEmitter
	names   *entity.NameGenerator
	metrics *metrics.Collector

	meta          config.MappingMeta // 全局元参数（拷贝，start/end可能被重新计算）
	prototypes    *prototype.Registry
	distributions *distribution.Registry

	stationaries  []stationary.Spawner
	trafficLights []*trafficlight.Spawner
	topology      *trafficlight.Topology

	flows        *container.Array[*flow.Generator]
	agents       *container.Array[*agent.Spawner]
	vehicleTypes map[string]entity.VehicleType

	t                   int64 // 当前时间（纳秒）
	vehicleTypesSent    bool
	trafficLightsDone   bool
	stationariesStarted bool
}

// New 创建实体生成框架
// 功能：解析配置，创建所有生成器并绑定原型
// 参数：mapping-实体生成配置（不会被修改），emitter-交互消息去向，rng-随机数引擎，opts-可选参数
// 返回：实体生成框架
// 算法说明：
// 1. 读取全局元参数（拷贝）
// 2. 注册原型
// 3. 为每个固定设施创建生成器
// 4. 为每个信号灯配置创建生成器，以目标信号灯组ID或自动编号为键
// 5. 拷贝类型分布
// 6. 按需随机化类型分布的权重
// 7. 创建车流生成器：跳过最大数量为0的车流，按全局系数缩放数量与流量，展开车辆类型，
// 按需随机化与平移开始时间，只为开始时间非负的车流创建生成器
// 8. 为每个行人配置创建生成器
// 9. 将OD矩阵展开为车流生成器
// 10. 为所有生成器绑定同名原型
// 11. 需要平移开始时间时，将全局结束时间改为相对开始时间的值并清除开始时间，再将元参数应用到车流与行人
func New(mapping *config.Mapping, emitter entity.IEmitter, rng *randengine.Engine, opts ...Option) *Framework {
	if mapping == nil {
		mapping = &config.Mapping{}
	}
	f := &Framework{
		rng:          rng,
		emitter:      emitter,
		names:        entity.NewNameGenerator(),
		flows:        container.NewArray[*flow.Generator](),
		agents:       container.NewArray[*agent.Spawner](),
		vehicleTypes: make(map[string]entity.VehicleType),
	}
	for _, opt := range opts {
		opt(f)
	}
	// 1
	if mapping.Config != nil {
		f.meta = *mapping.Config
	}
	meta := &f.meta
	// 2
	f.prototypes = prototype.NewRegistry(mapping.Prototypes)
	// 3
	f.stationaries = stationary.Build(mapping)
	// 4
	f.trafficLights = trafficlight.Build(mapping.TrafficLights)
	// 5
	f.distributions = distribution.NewRegistry(mapping.TypeDistributions)
	// 6
	if meta.RandomizeWeights {
		f.distributions.RandomizeAll(rng, meta.WeightResidual)
	}
	// 7
	f.buildVehicleFlows(mapping.Vehicles)
	// 8
	for _, c := range mapping.Agents {
		if c == nil {
			continue
		}
		a := *c
		if meta.AdjustStartingTimes {
			a.StartingTime -= lo.FromPtr(meta.Start)
		}
		f.agents.Add(agent.New(&a))
	}
	// 9
	for i, m := range mapping.OriginDestinationMatrices {
		if m == nil {
			continue
		}
		c := *m
		if meta.AdjustStartingTimes {
			f.shift(&c.StartingTime, &c.MaxTime)
		}
		if c.StartingTime < 0 {
			log.Infof("od matrix %d starts before the start time, skip it", i)
			continue
		}
		f.flows.Add(flow.FromMatrix(&c, f.distributions, rng, meta.RandomizeFlows, meta.FixedOrder)...)
	}
	// 10
	for _, s := range f.stationaries {
		s.FillInPrototype(f)
	}
	for _, s := range f.trafficLights {
		s.FillInPrototype(f)
	}
	for _, g := range f.flows.Data() {
		g.FillInPrototype(f)
	}
	for _, a := range f.agents.Data() {
		a.FillInPrototype(f)
	}
	// 11
	if meta.AdjustStartingTimes {
		if meta.End != nil {
			meta.End = lo.ToPtr(*meta.End - lo.FromPtr(meta.Start))
		}
		meta.Start = nil
	}
	for _, g := range f.flows.Data() {
		g.Configure(meta)
		g.CollectVehicleTypes(f.vehicleTypes)
	}
	for _, a := range f.agents.Data() {
		a.Configure(meta)
	}

	if f.flows.Len() == 0 && f.agents.Len() == 0 {
		log.Info("No vehicle spawners defined")
	}
	log.Infof("%d vehicle flows, %d agents, %d stationary units, %d traffic light configs, %d vehicle types",
		f.flows.Len(), f.agents.Len(), len(f.stationaries), len(f.trafficLights), len(f.vehicleTypes))
	f.updateActiveGenerators()
	return f
}

// buildVehicleFlows 创建车流生成器
func (f *Framework) buildVehicleFlows(vehicles []*config.Vehicle) {
	meta := &f.meta
	scaler := distribution.NewScaler(meta.GetScaleTraffic())
	for i, c := range vehicles {
		if c == nil {
			continue
		}
		v := *c
		if v.MaxNumberVehicles != nil && *v.MaxNumberVehicles == 0 {
			log.Infof("vehicle flow %d is disabled (max_number_vehicles=0)", i)
			continue
		}
		count := lo.FromPtrOr(v.MaxNumberVehicles, config.Unlimited)
		if scaler.Enabled() {
			count = scaler.ScaleCount(count)
			v.TargetFlow = scaler.ScaleFlow(lo.Ternary(v.TargetFlow != 0, v.TargetFlow, config.DefaultTargetFlow))
			if v.TargetFlow <= 0 {
				log.Infof("vehicle flow %d is scaled to zero", i)
				continue
			}
		}
		v.MaxNumberVehicles = &count
		types := f.distributions.Resolve(v.Types, v.TypeDistribution)
		if len(types) == 0 {
			log.Warnf("vehicle flow %d has no vehicle types, skip it", i)
			continue
		}
		if meta.RandomizeStartingTimes && v.TypeDistribution == "" &&
			(v.SpawningMode == "" || v.SpawningMode == config.SpawningModeConstant) {
			v.StartingTime = flow.RandomizeStartingTime(f.rng, v.StartingTime)
		}
		if meta.AdjustStartingTimes {
			f.shift(&v.StartingTime, &v.MaxTime)
		}
		if v.StartingTime < 0 {
			log.Infof("vehicle flow %d starts before the start time, skip it", i)
			continue
		}
		f.flows.Add(flow.New(&v, types, f.rng, meta.RandomizeFlows, meta.FixedOrder))
	}
	if scaler.Enabled() {
		log.Infof("scale traffic by %.3f, remainder %.3f", meta.GetScaleTraffic(), scaler.Remainder())
	}
}

// shift 将开始与结束时间平移为相对全局开始时间的值
func (f *Framework) shift(start *float64, end **float64) {
	offset := lo.FromPtr(f.meta.Start)
	*start -= offset
	if *end != nil {
		*end = lo.ToPtr(**end - offset)
	}
}

// AddVehicleFlow 加入一个外部创建的车流生成器
// 说明：构造完成后调用，生成器使用已平移的全局结束时间，其车辆类型会出现在类型初始化消息中
func (f *Framework) AddVehicleFlow(g *flow.Generator) {
	g.FillInPrototype(f)
	g.Configure(&f.meta)
	g.CollectVehicleTypes(f.vehicleTypes)
	f.flows.Add(g)
	f.updateActiveGenerators()
}

// SetTrafficLightTopology 设置信号灯组拓扑，只在信号灯分配执行前生效
func (f *Framework) SetTrafficLightTopology(t *trafficlight.Topology) {
	if f.trafficLightsDone {
		log.Warn("traffic lights have been assigned, ignore the new topology")
		return
	}
	f.topology = t
}

// PrototypeByName 按名称查找原型，不存在则返回nil
func (f *Framework) PrototypeByName(name string) *config.Prototype {
	return f.prototypes.Get(name)
}

// TypeDistributionByName 按名称查找类型分布，不存在则返回空列表
func (f *Framework) TypeDistributionByName(name string) []*config.Prototype {
	return f.distributions.ByName(name)
}

// VehicleTypesInitialization 汇总所有车流用到的车辆类型
func (f *Framework) VehicleTypesInitialization() *entity.VehicleTypesInitialization {
	return &entity.VehicleTypesInitialization{
		Header: entity.Header{Time: f.t},
		Types:  maps.Clone(f.vehicleTypes),
	}
}

// ActiveVehicleFlows 尚未耗尽的车流生成器数
func (f *Framework) ActiveVehicleFlows() int {
	return f.flows.Len()
}

// ActiveAgents 尚未耗尽的行人生成器数
func (f *Framework) ActiveAgents() int {
	return f.agents.Len()
}

func (f *Framework) updateActiveGenerators() {
	f.metrics.SetActiveGenerators(string(entity.KindVehicle), f.flows.Len())
	f.metrics.SetActiveGenerators(string(entity.KindAgent), f.agents.Len())
}
