package entity

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"google.golang.org/protobuf/encoding/protojson"
)

// InteractionType 交互消息类型
type InteractionType string

const (
	TypeVehicleTypesInitialization  InteractionType = "VehicleTypesInitialization"
	TypeTrafficLightRegistration    InteractionType = "TrafficLightRegistration"
	TypeRsuRegistration             InteractionType = "RsuRegistration"
	TypeTmcRegistration             InteractionType = "TmcRegistration"
	TypeServerRegistration          InteractionType = "ServerRegistration"
	TypeChargingStationRegistration InteractionType = "ChargingStationRegistration"
	TypeVehicleRegistration         InteractionType = "VehicleRegistration"
	TypeAgentRegistration           InteractionType = "AgentRegistration"
)

// Interaction 发往外部编排方的交互消息
type Interaction interface {
	Type() InteractionType
	GetTime() int64 // 消息时间（纳秒）
}

// Header 所有交互消息的公共字段
type Header struct {
	Time int64 `bson:"time"`
}

func (h Header) GetTime() int64 {
	return h.Time
}

// UnitRegistration 单元注册消息的公共字段
type UnitRegistration struct {
	Header       `bson:",inline"`
	Name         string   `bson:"name"`
	Group        string   `bson:"group"`
	Applications []string `bson:"applications"`
}

func (r UnitRegistration) UnitName() string {
	return r.Name
}

// VehicleTypesInitialization 车辆类型初始化消息
// 说明：启动时发送一次，汇总所有车流生成器用到的车辆类型
type VehicleTypesInitialization struct {
	Header `bson:",inline"`
	Types  map[string]VehicleType `bson:"types"`
}

func (*VehicleTypesInitialization) Type() InteractionType { return TypeVehicleTypesInitialization }

// TrafficLightGroup 外部信号灯组
// 说明：由路网中带有固定配时方案的路口得到，GroupID为外部标识
type TrafficLightGroup struct {
	GroupID    string              `bson:"group_id"`
	JunctionID int32               `bson:"junction_id"`
	Program    *mapv2.TrafficLight `bson:"program"`
}

// MarshalBSON 编码信号灯组
// 说明：固定配时方案经protojson（proto字段名）转换后作为子文档写入，未配置时省略
func (g TrafficLightGroup) MarshalBSON() ([]byte, error) {
	doc := bson.D{
		{Key: "group_id", Value: g.GroupID},
		{Key: "junction_id", Value: g.JunctionID},
	}
	if g.Program != nil {
		data, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(g.Program)
		if err != nil {
			return nil, fmt.Errorf("marshal program of group %s: %w", g.GroupID, err)
		}
		var program bson.D
		if err := bson.UnmarshalExtJSON(data, false, &program); err != nil {
			return nil, fmt.Errorf("convert program of group %s: %w", g.GroupID, err)
		}
		doc = append(doc, bson.E{Key: "program", Value: program})
	}
	return bson.Marshal(doc)
}

// TrafficLightRegistration 信号灯组注册消息
type TrafficLightRegistration struct {
	UnitRegistration  `bson:",inline"`
	TrafficLightGroup *TrafficLightGroup `bson:"traffic_light_group"`
	LanesControlled   []int32            `bson:"lanes_controlled"`
}

func (*TrafficLightRegistration) Type() InteractionType { return TypeTrafficLightRegistration }

// RsuRegistration 路侧单元注册消息
type RsuRegistration struct {
	UnitRegistration `bson:",inline"`
	Position         *config.Position `bson:"position"`
}

func (*RsuRegistration) Type() InteractionType { return TypeRsuRegistration }

// TmcRegistration 交通管理中心注册消息
type TmcRegistration struct {
	UnitRegistration  `bson:",inline"`
	InductionLoops    []string `bson:"induction_loops"`
	LaneAreaDetectors []string `bson:"lane_area_detectors"`
}

func (*TmcRegistration) Type() InteractionType { return TypeTmcRegistration }

// ServerRegistration 服务器注册消息
type ServerRegistration struct {
	UnitRegistration `bson:",inline"`
}

func (*ServerRegistration) Type() InteractionType { return TypeServerRegistration }

// ChargingStationRegistration 充电站注册消息
type ChargingStationRegistration struct {
	UnitRegistration `bson:",inline"`
	Position         *config.Position       `bson:"position"`
	Operator         string                 `bson:"operator"`
	ChargingSpots    []*config.ChargingSpot `bson:"charging_spots"`
}

func (*ChargingStationRegistration) Type() InteractionType { return TypeChargingStationRegistration }

// VehicleRegistration 车辆生成消息
type VehicleRegistration struct {
	UnitRegistration `bson:",inline"`
	VehicleType      VehicleType      `bson:"vehicle_type"`
	Origin           *config.Position `bson:"origin"`
	Destination      *config.Position `bson:"destination"`
	DepartSpeed      float64          `bson:"depart_speed"`
}

func (*VehicleRegistration) Type() InteractionType { return TypeVehicleRegistration }

// AgentRegistration 行人生成消息
type AgentRegistration struct {
	UnitRegistration `bson:",inline"`
	Origin           *config.Position `bson:"origin"`
	Destination      *config.Position `bson:"destination"`
	WalkingSpeed     float64          `bson:"walking_speed"`
}

func (*AgentRegistration) Type() InteractionType { return TypeAgentRegistration }
