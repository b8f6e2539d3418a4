package entity

import (
	"errors"
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNameGenerator(t *testing.T) {
	g := NewNameGenerator()
	assert.Equal(t, "veh_0", g.Next(KindVehicle))
	assert.Equal(t, "veh_1", g.Next(KindVehicle))
	assert.Equal(t, "tl_0", g.Next(KindTrafficLight))
	assert.Equal(t, "veh_2", g.Next(KindVehicle))

	// 不同生成器互不影响
	assert.Equal(t, "veh_0", NewNameGenerator().Next(KindVehicle))
}

func TestFederateError(t *testing.T) {
	cause := errors.New("connection refused")
	r := &VehicleRegistration{UnitRegistration: UnitRegistration{Name: "veh_3"}}
	var err error = NewFederateError(r, cause)

	assert.ErrorIs(t, err, ErrFederate)
	assert.ErrorIs(t, err, cause)
	var fe *FederateError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, TypeVehicleRegistration, fe.Type)
	assert.Equal(t, "veh_3", fe.Name)
	assert.Contains(t, err.Error(), "veh_3")

	err = NewFederateError(&VehicleTypesInitialization{}, cause)
	assert.NotContains(t, err.Error(), " for ")
}

func TestNewVehicleTypeDefaults(t *testing.T) {
	vt := NewVehicleType(nil)
	assert.Equal(t, DefaultVehicleClass, vt.VehicleClass)
	assert.Equal(t, DefaultLength, vt.Length)
	assert.Equal(t, DefaultSigma, vt.Sigma)

	vt = NewVehicleType(&config.Prototype{Name: "bus", VehicleClass: "bus", Length: lo.ToPtr(12.), MaxSpeed: lo.ToPtr(20.)})
	assert.Equal(t, "bus", vt.Name)
	assert.Equal(t, "bus", vt.VehicleClass)
	assert.Equal(t, 12., vt.Length)
	assert.Equal(t, 20., vt.MaxSpeed)
	assert.Equal(t, DefaultWidth, vt.Width)
	assert.Equal(t, DefaultMaxDeceleration, vt.MaxDeceleration)
}

func TestTrafficLightRegistrationCarriesProgram(t *testing.T) {
	r := &TrafficLightRegistration{
		UnitRegistration: UnitRegistration{Name: "tl_0", Group: "7", Applications: []string{}},
		TrafficLightGroup: &TrafficLightGroup{
			GroupID:    "7",
			JunctionID: 7,
			Program:    &mapv2.TrafficLight{JunctionId: 7},
		},
		LanesControlled: []int32{1, 2},
	}
	data, err := bson.Marshal(r)
	require.NoError(t, err)
	raw := bson.Raw(data)
	assert.Equal(t, "7", raw.Lookup("traffic_light_group", "group_id").StringValue())
	assert.Equal(t, int64(7), raw.Lookup("traffic_light_group", "program", "junction_id").AsInt64())

	// 没有配时方案时不写program
	r.TrafficLightGroup.Program = nil
	data, err = bson.Marshal(r)
	require.NoError(t, err)
	_, err = bson.Raw(data).LookupErr("traffic_light_group", "program")
	assert.Error(t, err)
}
