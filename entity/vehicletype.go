package entity

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// 车辆类型参数默认值
const (
	DefaultVehicleClass    = "car"
	DefaultLength          = 5.   // 车长（米）
	DefaultWidth           = 1.8  // 车宽（米）
	DefaultMinGap          = 2.5  // 最小车距（米）
	DefaultMaxSpeed        = 70.  // 最大速度（米/秒）
	DefaultMaxAcceleration = 2.6  // 最大加速度（米/秒^2）
	DefaultMaxDeceleration = 4.5  // 最大减速度（米/秒^2）
	DefaultHeadway         = 1.   // 车头时距（秒）
	DefaultSigma           = 0.5  // 驾驶员不完美度
)

// VehicleType 车辆类型定义
// 功能：由原型补全默认值后得到的完整车辆参数，随类型初始化消息与车辆注册消息发出
type VehicleType struct {
	Name            string  `bson:"name"`
	VehicleClass    string  `bson:"vehicle_class"`
	Length          float64 `bson:"length"`
	Width           float64 `bson:"width"`
	MinGap          float64 `bson:"min_gap"`
	MaxSpeed        float64 `bson:"max_speed"`
	MaxAcceleration float64 `bson:"max_acceleration"`
	MaxDeceleration float64 `bson:"max_deceleration"`
	Headway         float64 `bson:"headway"`
	Sigma           float64 `bson:"sigma"`
}

// NewVehicleType 根据原型生成车辆类型，未配置的参数取默认值
func NewVehicleType(p *config.Prototype) VehicleType {
	if p == nil {
		p = &config.Prototype{}
	}
	return VehicleType{
		Name:            p.Name,
		VehicleClass:    lo.Ternary(p.VehicleClass != "", p.VehicleClass, DefaultVehicleClass),
		Length:          lo.FromPtrOr(p.Length, DefaultLength),
		Width:           lo.FromPtrOr(p.Width, DefaultWidth),
		MinGap:          lo.FromPtrOr(p.MinGap, DefaultMinGap),
		MaxSpeed:        lo.FromPtrOr(p.MaxSpeed, DefaultMaxSpeed),
		MaxAcceleration: lo.FromPtrOr(p.MaxAcceleration, DefaultMaxAcceleration),
		MaxDeceleration: lo.FromPtrOr(p.MaxDeceleration, DefaultMaxDeceleration),
		Headway:         lo.FromPtrOr(p.Headway, DefaultHeadway),
		Sigma:           lo.FromPtrOr(p.Sigma, DefaultSigma),
	}
}
