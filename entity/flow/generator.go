// 车流生成器
package flow

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/weighting"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// Generator 车流生成器
// 功能：按生成模式在[start, end]内逐辆发出车辆生成消息，直到达到最大数量或超出结束时间
// 说明：每个车流配置对应一个生成器，由framework持有，耗尽后被移出活跃集合
type Generator struct {
	types        []*config.Prototype  // 展开后的带权重车辆类型
	vehicleTypes []entity.VehicleType // 与types一一对应的完整车辆类型
	selector     weighting.Selector[int]

	rng         *randengine.Engine
	mode        config.SpawningMode
	flowNoise   bool
	start       int64   // 开始时间（纳秒）
	end         int64   // 结束时间（纳秒），不限时为math.MaxInt64
	maxCount    int     // 最大车辆数，不限数量为config.Unlimited
	rate        float64 // 目标流量（辆/秒）
	group       *string
	origin      *config.Position
	destination *config.Position
	departSpeed float64

	spawned   int
	prev      float64 // 上一辆车的出发偏移（秒）
	next      int64   // 下一辆车的出发时间（纳秒）
	exhausted bool
}

// New 创建车流生成器
// 参数：v-车流配置（时间单位为秒，最大数量与流量已缩放），types-已展开的车辆类型，
// rng-随机数引擎，flowNoise-constant模式是否加入扰动，fixedOrder-是否按确定性顺序选择车辆类型
// 返回：车流生成器
// 说明：types中没有正权重的条目时，所有类型等概率选择
func New(
	v *config.Vehicle, types []*config.Prototype,
	rng *randengine.Engine, flowNoise, fixedOrder bool,
) *Generator {
	g := &Generator{
		types:       types,
		rng:         rng,
		mode:        v.SpawningMode,
		flowNoise:   flowNoise,
		start:       secondsToNanos(v.StartingTime),
		end:         math.MaxInt64,
		maxCount:    lo.FromPtrOr(v.MaxNumberVehicles, config.Unlimited),
		rate:        lo.Ternary(v.TargetFlow != 0, v.TargetFlow, config.DefaultTargetFlow) / 3600,
		group:       v.Group,
		origin:      v.Origin,
		destination: v.Destination,
		departSpeed: lo.FromPtrOr(v.DepartSpeed, 0),
	}
	if v.MaxTime != nil {
		g.end = secondsToNanos(*v.MaxTime)
	}
	if !g.mode.Valid() {
		log.Warnf("unknown spawning mode %s, use constant", g.mode)
		g.mode = config.SpawningModeConstant
	}
	items := lo.Map(types, func(p *config.Prototype, i int) weighting.Item[int] {
		return weighting.Item[int]{Value: i, Weight: p.GetWeight()}
	})
	if lo.EveryBy(items, func(it weighting.Item[int]) bool { return it.Weight <= 0 }) {
		for i := range items {
			items[i].Weight = 1
		}
	}
	g.selector = weighting.New(items, rng, fixedOrder)
	g.vehicleTypes = lo.Map(types, func(p *config.Prototype, _ int) entity.VehicleType {
		return entity.NewVehicleType(p)
	})
	return g
}

// FillInPrototype 用同名原型补全各车辆类型的参数
func (g *Generator) FillInPrototype(lookup entity.IPrototypeLookup) {
	for i, t := range g.types {
		if p := lookup.PrototypeByName(t.Name); p != nil {
			t.Complete(p)
		} else {
			log.Infof("no prototype for vehicle type %s, use defaults", t.Name)
		}
		g.vehicleTypes[i] = entity.NewVehicleType(t)
	}
}

// Configure 应用全局元参数
// 说明：结束时间不晚于全局结束时间，开始时间不早于全局开始时间；之后计算首辆车的出发时间
func (g *Generator) Configure(meta *config.MappingMeta) {
	if meta != nil {
		if meta.Start != nil {
			g.start = max(g.start, secondsToNanos(*meta.Start))
		}
		if meta.End != nil {
			g.end = min(g.end, secondsToNanos(*meta.End))
		}
	}
	g.schedule()
}

// CollectVehicleTypes 将本生成器用到的车辆类型加入types，已存在的同名类型不覆盖
func (g *Generator) CollectVehicleTypes(types map[string]entity.VehicleType) {
	for _, vt := range g.vehicleTypes {
		if _, ok := types[vt.Name]; !ok {
			types[vt.Name] = vt
		}
	}
}

// TimeAdvance 发出所有出发时间不晚于当前时间的车辆
// 参数：ctx-生成器运行时上下文
// 返回：是否已耗尽，消息发送错误
func (g *Generator) TimeAdvance(ctx entity.ISpawnContext) (bool, error) {
	if g.exhausted {
		return true, nil
	}
	now := ctx.Time()
	for !g.exhausted && g.next <= now {
		i := g.selector.Next()
		t := g.types[i]
		ia := &entity.VehicleRegistration{
			UnitRegistration: entity.UnitRegistration{
				Header:       entity.Header{Time: now},
				Name:         ctx.NextName(entity.KindVehicle),
				Group:        lo.FromPtr(lo.CoalesceOrEmpty(g.group, t.Group)),
				Applications: t.Applications,
			},
			VehicleType: g.vehicleTypes[i],
			Origin:      g.origin,
			Destination: g.destination,
			DepartSpeed: g.departSpeed,
		}
		if err := ctx.Emit(ia); err != nil {
			return false, err
		}
		g.spawned++
		g.schedule()
	}
	return g.exhausted, nil
}

// Spawned 已发出的车辆数
func (g *Generator) Spawned() int {
	return g.spawned
}

// Exhausted 是否已耗尽
func (g *Generator) Exhausted() bool {
	return g.exhausted
}

// schedule 计算下一辆车的出发时间，超出数量或时间范围时标记耗尽
func (g *Generator) schedule() {
	if g.spawned >= g.maxCount || g.rate <= 0 || g.selector == nil || g.start > g.end {
		g.exhausted = true
		return
	}
	mode := g.mode
	duration := math.Inf(1)
	if g.end != math.MaxInt64 {
		duration = float64(g.end-g.start) / nsPerSecond
	}
	if mode.Ramp() && (math.IsInf(duration, 1) || duration <= 0) {
		log.Warnf("spawning mode %s needs a finite time range, use constant", mode)
		mode = config.SpawningModeConstant
		g.mode = mode
	}
	offset, ok := departureOffset(g.rng, mode, g.spawned, g.rate, duration, g.prev, g.flowNoise)
	if !ok {
		g.exhausted = true
		return
	}
	g.prev = offset
	next := g.start + secondsToNanos(offset)
	if next > g.end || next < g.start {
		g.exhausted = true
		return
	}
	g.next = next
}
