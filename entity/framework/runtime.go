package framework

import (
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/agent"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/flow"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/trafficlight"
)

// 交互消息类型对应的单元类别
var interactionKinds = map[entity.InteractionType]entity.UnitKind{
	entity.TypeTrafficLightRegistration:    entity.KindTrafficLight,
	entity.TypeRsuRegistration:             entity.KindRsu,
	entity.TypeTmcRegistration:             entity.KindTmc,
	entity.TypeServerRegistration:          entity.KindServer,
	entity.TypeChargingStationRegistration: entity.KindChargingStation,
	entity.TypeVehicleRegistration:         entity.KindVehicle,
	entity.TypeAgentRegistration:           entity.KindAgent,
}

// Time 当前仿真时间（纳秒）
func (f *Framework) Time() int64 {
	return f.t
}

// NextName 生成全局唯一的单元名
func (f *Framework) NextName(kind entity.UnitKind) string {
	return f.names.Next(kind)
}

// Emit 发送交互消息
// 返回：发送失败时返回*entity.FederateError
func (f *Framework) Emit(ia entity.Interaction) error {
	if err := f.emitter.Trigger(ia); err != nil {
		fe := entity.NewFederateError(ia, err)
		log.Error(fe)
		return fe
	}
	switch ia.Type() {
	case entity.TypeVehicleTypesInitialization:
	case entity.TypeVehicleRegistration, entity.TypeAgentRegistration:
		f.metrics.IncSpawned(string(interactionKinds[ia.Type()]))
	default:
		kind, ok := interactionKinds[ia.Type()]
		if !ok {
			log.Panicf("unknown interaction type %s", ia.Type())
		}
		f.metrics.IncRegistrations(string(kind))
	}
	return nil
}

// Init 发送车辆类型初始化消息，只发送一次
func (f *Framework) Init() error {
	if f.vehicleTypesSent {
		return nil
	}
	if err := f.Emit(f.VehicleTypesInitialization()); err != nil {
		return err
	}
	f.vehicleTypesSent = true
	return nil
}

// TimeAdvance 推进到时间t
// 功能：第一次调用时完成信号灯分配与固定设施注册，之后轮询所有活跃的车流与行人生成器
// 参数：t-当前仿真时间（纳秒），单调不减
// 返回：消息发送错误（*entity.FederateError），调用方应中止运行
// 算法说明：
// 1. 记录当前时间，供生成器判断是否到达出发时间
// 2. 信号灯分配尚未执行且已有信号灯组拓扑时，执行一次分配
// 3. 固定设施尚未注册时，逐个调用Init（每个生成器自身保证只注册一次）
// 4. 轮询车流生成器，删除已耗尽的生成器
// 5. 同样轮询行人生成器
func (f *Framework) TimeAdvance(t int64) error {
	if t < f.t {
		log.Warnf("time goes back from %d to %d", f.t, t)
	}
	f.t = t
	if !f.trafficLightsDone && f.topology != nil {
		if err := trafficlight.Assign(f.trafficLights, f.topology, f.rng, f); err != nil {
			return err
		}
		f.trafficLightsDone = true
		log.Infof("%d traffic light groups registered", f.topology.Len())
	}
	if !f.stationariesStarted {
		for _, s := range f.stationaries {
			if err := s.Init(f); err != nil {
				return err
			}
		}
		f.stationariesStarted = true
	}
	defer f.updateActiveGenerators()
	removed, err := f.flows.Poll(func(g *flow.Generator) (bool, error) {
		return g.TimeAdvance(f)
	})
	if removed > 0 {
		log.Debugf("%d vehicle flows exhausted at %d, %d left", removed, t, f.flows.Len())
	}
	if err != nil {
		return err
	}
	removed, err = f.agents.Poll(func(a *agent.Spawner) (bool, error) {
		return a.TimeAdvance(f)
	})
	if removed > 0 {
		log.Debugf("%d agents exhausted at %d, %d left", removed, t, f.agents.Len())
	}
	return err
}
