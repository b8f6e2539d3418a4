package output

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"git.fiblab.net/sim/protos/v2/go/city/person/v2/personv2connect"
	tripv2 "git.fiblab.net/sim/protos/v2/go/city/trip/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

const defaultTimeout = 10 * time.Second

// personAdder 交通模拟器的AddPerson接口
type personAdder interface {
	AddPerson(context.Context, *connect.Request[personv2.AddPersonRequest]) (*connect.Response[personv2.AddPersonResponse], error)
}

// CityEmitter 将车辆与行人生成消息转发给交通模拟器
// 功能：把VehicleRegistration/AgentRegistration转换为personv2.Person，通过AddPerson加入交通模拟器
// 说明：其他类型的消息被忽略
type CityEmitter struct {
	client  personAdder
	nextID  int32
	timeout time.Duration
}

// NewCityEmitter 创建交通模拟器转发器
// 参数：addr-交通模拟器地址，例如http://localhost:51102，firstID-第一个生成的人的ID
func NewCityEmitter(addr string, firstID int32) *CityEmitter {
	return newCityEmitter(personv2connect.NewPersonServiceClient(http.DefaultClient, addr), firstID)
}

func newCityEmitter(client personAdder, firstID int32) *CityEmitter {
	return &CityEmitter{client: client, nextID: firstID, timeout: defaultTimeout}
}

func (e *CityEmitter) Trigger(ia entity.Interaction) error {
	var person *personv2.Person
	switch r := ia.(type) {
	case *entity.VehicleRegistration:
		person = e.vehicle(r)
	case *entity.AgentRegistration:
		person = e.agent(r)
	default:
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	res, err := e.client.AddPerson(ctx, connect.NewRequest(&personv2.AddPersonRequest{Person: person}))
	if err != nil {
		return fmt.Errorf("add person %d: %w", person.Id, err)
	}
	log.Debugf("add %s as person %d", ia.(interface{ UnitName() string }).UnitName(), res.Msg.PersonId)
	return nil
}

func (e *CityEmitter) newID() int32 {
	id := e.nextID
	e.nextID++
	return id
}

func (e *CityEmitter) vehicle(r *entity.VehicleRegistration) *personv2.Person {
	vt := r.VehicleType
	return &personv2.Person{
		Id:   e.newID(),
		Home: toPosition(r.Origin),
		Schedules: []*tripv2.Schedule{
			schedule(r.Time, tripv2.TripMode_TRIP_MODE_DRIVE_ONLY, r.Destination),
		},
		VehicleAttribute: vehicleAttribute(vt),
	}
}

func (e *CityEmitter) agent(r *entity.AgentRegistration) *personv2.Person {
	return &personv2.Person{
		Id:   e.newID(),
		Home: toPosition(r.Origin),
		Schedules: []*tripv2.Schedule{
			schedule(r.Time, tripv2.TripMode_TRIP_MODE_WALK_ONLY, r.Destination),
		},
		// 交通模拟器要求所有人都带有合法的车辆属性
		VehicleAttribute:    vehicleAttribute(entity.NewVehicleType(nil)),
		PedestrianAttribute: &personv2.PedestrianAttribute{Speed: r.WalkingSpeed},
	}
}

func vehicleAttribute(vt entity.VehicleType) *personv2.VehicleAttribute {
	return &personv2.VehicleAttribute{
		Length:                   vt.Length,
		Width:                    vt.Width,
		MaxSpeed:                 vt.MaxSpeed,
		MaxAcceleration:          vt.MaxAcceleration,
		MaxBrakingAcceleration:   -vt.MaxDeceleration,
		UsualAcceleration:        vt.MaxAcceleration / 2,
		UsualBrakingAcceleration: -vt.MaxDeceleration / 2,
		MinGap:                   vt.MinGap,
		Headway:                  vt.Headway,
	}
}

func schedule(t int64, mode tripv2.TripMode, end *config.Position) *tripv2.Schedule {
	return &tripv2.Schedule{
		DepartureTime: lo.ToPtr(float64(t) / 1e9),
		LoopCount:     1,
		Trips: []*tripv2.Trip{
			{Mode: mode, End: toPosition(end)},
		},
	}
}

// toPosition 将配置中的位置转换为geov2.Position，nil返回nil
func toPosition(p *config.Position) *geov2.Position {
	if p == nil {
		return nil
	}
	res := &geov2.Position{}
	switch {
	case p.AoiID != nil:
		res.AoiPosition = &geov2.AoiPosition{AoiId: *p.AoiID}
	case p.LaneID != nil:
		res.LanePosition = &geov2.LanePosition{LaneId: *p.LaneID, S: p.S}
	}
	if p.X != nil && p.Y != nil {
		res.XyPosition = &geov2.XYPosition{X: *p.X, Y: *p.Y}
	}
	return res
}
