package config

import (
	"math"
	"slices"
)

// Unlimited 未配置最大数量的车流的数量哨兵值
const Unlimited = math.MaxInt32

// DefaultTargetFlow 未配置目标流量时的默认值（辆/小时）
const DefaultTargetFlow = 600.

// SpawningMode 车流生成模式
type SpawningMode string

const (
	SpawningModeConstant      SpawningMode = "constant"        // 恒定车头时距
	SpawningModePoisson       SpawningMode = "poisson"         // 泊松到达
	SpawningModeGrow          SpawningMode = "grow"            // 流量从0线性增长到目标流量
	SpawningModeShrink        SpawningMode = "shrink"          // 流量从目标流量线性下降到0
	SpawningModeGrowAndShrink SpawningMode = "grow_and_shrink" // 先增长后下降，中点达到目标流量
)

// Valid 是否为已知的生成模式（空值视为constant）
func (m SpawningMode) Valid() bool {
	switch m {
	case "", SpawningModeConstant, SpawningModePoisson,
		SpawningModeGrow, SpawningModeShrink, SpawningModeGrowAndShrink:
		return true
	}
	return false
}

// Ramp 是否为流量随时间线性变化的模式，这类模式需要有限的结束时间
func (m SpawningMode) Ramp() bool {
	return m == SpawningModeGrow || m == SpawningModeShrink || m == SpawningModeGrowAndShrink
}

// WeightResidual 类型分布权重随机化后残差的分配方式
type WeightResidual string

const (
	WeightResidualProportional WeightResidual = "proportional" // 按新权重比例分配给所有被扰动的条目
	WeightResidualLast         WeightResidual = "last"         // 全部加到最后一个被扰动的条目
)

// Position 配置中的位置
// 说明：aoi_id与lane_id二选一，x/y为可选的平面坐标
type Position struct {
	AoiID  *int32   `yaml:"aoi_id,omitempty" bson:"aoi_id,omitempty"`
	LaneID *int32   `yaml:"lane_id,omitempty" bson:"lane_id,omitempty"`
	S      float64  `yaml:"s,omitempty" bson:"s,omitempty"`
	X      *float64 `yaml:"x,omitempty" bson:"x,omitempty"`
	Y      *float64 `yaml:"y,omitempty" bson:"y,omitempty"`
}

// Prototype 实体原型
// 功能：可复用的、按名称引用的实体参数模板，同时作为类型分布中的带权重条目
// 说明：所有可选参数均为指针，nil表示未配置，由Complete从同名原型补全
type Prototype struct {
	Name         string   `yaml:"name" bson:"name"`
	Weight       *float64 `yaml:"weight,omitempty" bson:"weight,omitempty"`
	Group        *string  `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications []string `yaml:"applications,omitempty" bson:"applications,omitempty"`

	// 车辆参数
	VehicleClass    string   `yaml:"vehicle_class,omitempty" bson:"vehicle_class,omitempty"`
	Length          *float64 `yaml:"length,omitempty" bson:"length,omitempty"`
	Width           *float64 `yaml:"width,omitempty" bson:"width,omitempty"`
	MinGap          *float64 `yaml:"min_gap,omitempty" bson:"min_gap,omitempty"`
	MaxSpeed        *float64 `yaml:"max_speed,omitempty" bson:"max_speed,omitempty"`
	MaxAcceleration *float64 `yaml:"max_acceleration,omitempty" bson:"max_acceleration,omitempty"`
	MaxDeceleration *float64 `yaml:"max_deceleration,omitempty" bson:"max_deceleration,omitempty"`
	Headway         *float64 `yaml:"headway,omitempty" bson:"headway,omitempty"`
	Sigma           *float64 `yaml:"sigma,omitempty" bson:"sigma,omitempty"`
}

// Copy 深拷贝
func (p *Prototype) Copy() *Prototype {
	if p == nil {
		return nil
	}
	c := *p
	c.Weight = copyPtr(p.Weight)
	c.Group = copyPtr(p.Group)
	c.Applications = slices.Clone(p.Applications)
	c.Length = copyPtr(p.Length)
	c.Width = copyPtr(p.Width)
	c.MinGap = copyPtr(p.MinGap)
	c.MaxSpeed = copyPtr(p.MaxSpeed)
	c.MaxAcceleration = copyPtr(p.MaxAcceleration)
	c.MaxDeceleration = copyPtr(p.MaxDeceleration)
	c.Headway = copyPtr(p.Headway)
	c.Sigma = copyPtr(p.Sigma)
	return &c
}

// WithWeight 返回权重被替换后的拷贝
func (p *Prototype) WithWeight(weight float64) *Prototype {
	c := p.Copy()
	c.Weight = &weight
	return c
}

// GetWeight 获取权重，未配置时为0
func (p *Prototype) GetWeight() float64 {
	if p == nil || p.Weight == nil {
		return 0
	}
	return *p.Weight
}

// Complete 用原型补全未配置的参数
// 功能：将base中已配置、而p中未配置的参数拷贝到p中
// 参数：base-同名原型，可以为nil
// 说明：名称与权重不会被覆盖
func (p *Prototype) Complete(base *Prototype) {
	if base == nil {
		return
	}
	if p.Group == nil {
		p.Group = copyPtr(base.Group)
	}
	if p.Applications == nil {
		p.Applications = slices.Clone(base.Applications)
	}
	if p.VehicleClass == "" {
		p.VehicleClass = base.VehicleClass
	}
	fill := func(dst **float64, src *float64) {
		if *dst == nil {
			*dst = copyPtr(src)
		}
	}
	fill(&p.Length, base.Length)
	fill(&p.Width, base.Width)
	fill(&p.MinGap, base.MinGap)
	fill(&p.MaxSpeed, base.MaxSpeed)
	fill(&p.MaxAcceleration, base.MaxAcceleration)
	fill(&p.MaxDeceleration, base.MaxDeceleration)
	fill(&p.Headway, base.Headway)
	fill(&p.Sigma, base.Sigma)
}

// Vehicle 车流配置
// 说明：时间单位均为秒；max_number_vehicles未配置表示不限数量，配置为0表示禁用
type Vehicle struct {
	StartingTime      float64      `yaml:"starting_time,omitempty" bson:"starting_time,omitempty"`
	MaxTime           *float64     `yaml:"max_time,omitempty" bson:"max_time,omitempty"`
	MaxNumberVehicles *int         `yaml:"max_number_vehicles,omitempty" bson:"max_number_vehicles,omitempty"`
	TargetFlow        float64      `yaml:"target_flow,omitempty" bson:"target_flow,omitempty"` // 辆/小时
	SpawningMode      SpawningMode `yaml:"spawning_mode,omitempty" bson:"spawning_mode,omitempty"`
	TypeDistribution  string       `yaml:"type_distribution,omitempty" bson:"type_distribution,omitempty"`
	Types             []*Prototype `yaml:"types,omitempty" bson:"types,omitempty"`
	Group             *string      `yaml:"group,omitempty" bson:"group,omitempty"`
	Origin            *Position    `yaml:"origin,omitempty" bson:"origin,omitempty"`
	Destination       *Position    `yaml:"destination,omitempty" bson:"destination,omitempty"`
	DepartSpeed       *float64     `yaml:"depart_speed,omitempty" bson:"depart_speed,omitempty"`
}

// Agent 行人配置
type Agent struct {
	Name         string    `yaml:"name" bson:"name"` // 原型名
	StartingTime float64   `yaml:"starting_time,omitempty" bson:"starting_time,omitempty"`
	Origin       *Position `yaml:"origin,omitempty" bson:"origin,omitempty"`
	Destination  *Position `yaml:"destination,omitempty" bson:"destination,omitempty"`
	Group        *string   `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications []string  `yaml:"applications,omitempty" bson:"applications,omitempty"`
	WalkingSpeed *float64  `yaml:"walking_speed,omitempty" bson:"walking_speed,omitempty"`
}

// RoadSideUnit 路侧单元配置
type RoadSideUnit struct {
	Name         string    `yaml:"name" bson:"name"`
	Position     *Position `yaml:"position,omitempty" bson:"position,omitempty"`
	Group        *string   `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications []string  `yaml:"applications,omitempty" bson:"applications,omitempty"`
}

// TrafficManagementCenter 交通管理中心配置
type TrafficManagementCenter struct {
	Name              string   `yaml:"name" bson:"name"`
	Group             *string  `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications      []string `yaml:"applications,omitempty" bson:"applications,omitempty"`
	InductionLoops    []string `yaml:"induction_loops,omitempty" bson:"induction_loops,omitempty"`
	LaneAreaDetectors []string `yaml:"lane_area_detectors,omitempty" bson:"lane_area_detectors,omitempty"`
}

// Server 服务器配置
type Server struct {
	Name         string   `yaml:"name" bson:"name"`
	Group        *string  `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications []string `yaml:"applications,omitempty" bson:"applications,omitempty"`
}

// ChargingSpot 充电桩
type ChargingSpot struct {
	ID            string `yaml:"id" bson:"id"`
	Type          int32  `yaml:"type,omitempty" bson:"type,omitempty"`
	ParkingPlaces int32  `yaml:"parking_places,omitempty" bson:"parking_places,omitempty"`
}

// ChargingStation 充电站配置
type ChargingStation struct {
	Name          string          `yaml:"name" bson:"name"`
	Position      *Position       `yaml:"position,omitempty" bson:"position,omitempty"`
	Operator      string          `yaml:"operator,omitempty" bson:"operator,omitempty"`
	Group         *string         `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications  []string        `yaml:"applications,omitempty" bson:"applications,omitempty"`
	ChargingSpots []*ChargingSpot `yaml:"charging_spots,omitempty" bson:"charging_spots,omitempty"`
}

// TrafficLight 信号灯行为配置
// 说明：tl_group_id指定时只匹配同名信号灯组，否则按weight参与随机分配
type TrafficLight struct {
	Name         string   `yaml:"name" bson:"name"`
	TlGroupID    *string  `yaml:"tl_group_id,omitempty" bson:"tl_group_id,omitempty"`
	Weight       *float64 `yaml:"weight,omitempty" bson:"weight,omitempty"`
	Group        *string  `yaml:"group,omitempty" bson:"group,omitempty"`
	Applications []string `yaml:"applications,omitempty" bson:"applications,omitempty"`
}

// OriginDestinationPoint OD矩阵中的点
type OriginDestinationPoint struct {
	Name     string    `yaml:"name" bson:"name"`
	Position *Position `yaml:"position" bson:"position"`
}

// OriginDestinationMatrix OD矩阵配置
// 说明：od_values[i][j]为从点i到点j的目标流量（辆/小时）
type OriginDestinationMatrix struct {
	Points           []*OriginDestinationPoint `yaml:"points" bson:"points"`
	OdValues         [][]float64               `yaml:"od_values" bson:"od_values"`
	StartingTime     float64                   `yaml:"starting_time,omitempty" bson:"starting_time,omitempty"`
	MaxTime          *float64                  `yaml:"max_time,omitempty" bson:"max_time,omitempty"`
	SpawningMode     SpawningMode              `yaml:"spawning_mode,omitempty" bson:"spawning_mode,omitempty"`
	TypeDistribution string                    `yaml:"type_distribution,omitempty" bson:"type_distribution,omitempty"`
	Types            []*Prototype              `yaml:"types,omitempty" bson:"types,omitempty"`
	DepartSpeed      *float64                  `yaml:"depart_speed,omitempty" bson:"depart_speed,omitempty"`
}

// MappingMeta 全局元参数
type MappingMeta struct {
	ScaleTraffic           float64        `yaml:"scale_traffic,omitempty" bson:"scale_traffic,omitempty"` // 0视为1
	RandomizeWeights       bool           `yaml:"randomize_weights,omitempty" bson:"randomize_weights,omitempty"`
	RandomizeFlows         bool           `yaml:"randomize_flows,omitempty" bson:"randomize_flows,omitempty"`
	RandomizeStartingTimes bool           `yaml:"randomize_starting_times,omitempty" bson:"randomize_starting_times,omitempty"`
	FixedOrder             bool           `yaml:"fixed_order,omitempty" bson:"fixed_order,omitempty"`
	AdjustStartingTimes    bool           `yaml:"adjust_starting_times,omitempty" bson:"adjust_starting_times,omitempty"`
	Start                  *float64       `yaml:"start,omitempty" bson:"start,omitempty"`
	End                    *float64       `yaml:"end,omitempty" bson:"end,omitempty"`
	WeightResidual         WeightResidual `yaml:"weight_residual,omitempty" bson:"weight_residual,omitempty"`
}

// GetScaleTraffic 获取流量缩放系数，未配置时为1
func (m *MappingMeta) GetScaleTraffic() float64 {
	if m == nil || m.ScaleTraffic == 0 {
		return 1
	}
	return m.ScaleTraffic
}

// Mapping 实体生成配置的根结构
type Mapping struct {
	Config                    *MappingMeta               `yaml:"config,omitempty" bson:"config,omitempty"`
	Prototypes                []*Prototype               `yaml:"prototypes,omitempty" bson:"prototypes,omitempty"`
	TypeDistributions         map[string][]*Prototype    `yaml:"type_distributions,omitempty" bson:"type_distributions,omitempty"`
	Vehicles                  []*Vehicle                 `yaml:"vehicles,omitempty" bson:"vehicles,omitempty"`
	Agents                    []*Agent                   `yaml:"agents,omitempty" bson:"agents,omitempty"`
	RoadSideUnits             []*RoadSideUnit            `yaml:"rsus,omitempty" bson:"rsus,omitempty"`
	TrafficManagementCenters  []*TrafficManagementCenter `yaml:"tmcs,omitempty" bson:"tmcs,omitempty"`
	Servers                   []*Server                  `yaml:"servers,omitempty" bson:"servers,omitempty"`
	ChargingStations          []*ChargingStation         `yaml:"charging_stations,omitempty" bson:"charging_stations,omitempty"`
	TrafficLights             []*TrafficLight            `yaml:"traffic_lights,omitempty" bson:"traffic_lights,omitempty"`
	OriginDestinationMatrices []*OriginDestinationMatrix `yaml:"matrix_mappers,omitempty" bson:"matrix_mappers,omitempty"`
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
