package entity

import "github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"

// 交互消息发送接口
// 说明：由外部编排方（或其适配器）实现，消息按引用交出，不等待确认
type IEmitter interface {
	Trigger(ia Interaction) error
}

// 原型查找接口
type IPrototypeLookup interface {
	// 按名称查找原型，不存在则返回nil
	PrototypeByName(name string) *config.Prototype
}

// 生成器运行时上下文（entity/framework的依赖倒置）
type ISpawnContext interface {
	Time() int64                   // 当前仿真时间（纳秒）
	NextName(kind UnitKind) string // 生成全局唯一的单元名
	// 发送交互消息，发送失败时返回*FederateError
	Emit(ia Interaction) error
}
