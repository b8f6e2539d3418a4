package entity

import "fmt"

// UnitKind 单元类别，同时作为单元名前缀与指标标签
type UnitKind string

const (
	KindVehicle         UnitKind = "veh"
	KindAgent           UnitKind = "agent"
	KindRsu             UnitKind = "rsu"
	KindTmc             UnitKind = "tmc"
	KindServer          UnitKind = "server"
	KindChargingStation UnitKind = "cs"
	KindTrafficLight    UnitKind = "tl"
)

// NameGenerator 单元名生成器
// 功能：为每类单元生成形如{kind}_{n}的唯一名称
// 说明：每次运行持有一个实例，不使用全局计数器
type NameGenerator struct {
	next map[UnitKind]int
}

func NewNameGenerator() *NameGenerator {
	return &NameGenerator{next: make(map[UnitKind]int)}
}

// Next 生成下一个名称
func (g *NameGenerator) Next(kind UnitKind) string {
	n := g.next[kind]
	g.next[kind] = n + 1
	return fmt.Sprintf("%s_%d", kind, n)
}
