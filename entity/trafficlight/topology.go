package trafficlight

import (
	"fmt"
	"strconv"

	"git.fiblab.net/general/common/v2/parallel"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
)

// Topology 外部信号灯组拓扑
// 功能：保存所有信号灯组以及各组控制的车道
type Topology struct {
	Groups                  []*entity.TrafficLightGroup
	LanesControlledByGroups map[string][]int32 // 信号灯组ID -> 受控车道ID
}

// NewTopology 由信号灯组与各组的受控车道创建拓扑，nil组被跳过
func NewTopology(groups []*entity.TrafficLightGroup, lanes map[string][]int32) *Topology {
	if lanes == nil {
		lanes = make(map[string][]int32)
	}
	return &Topology{
		Groups:                  lo.Compact(groups),
		LanesControlledByGroups: lanes,
	}
}

// FromMap 从路网中提取信号灯组拓扑
// 功能：每个带有固定配时方案的路口对应一个信号灯组，组ID为路口ID，受控车道为路口内的所有车道
// 参数：m-路网数据
// 返回：信号灯组拓扑，组的顺序与路网中路口的顺序一致
func FromMap(m *mapv2.Map) *Topology {
	junctions := lo.Filter(m.GetJunctions(), func(j *mapv2.Junction, _ int) bool {
		return j.GetFixedProgram() != nil
	})
	groups := parallel.GoMap(junctions, func(j *mapv2.Junction) *entity.TrafficLightGroup {
		return &entity.TrafficLightGroup{
			GroupID:    strconv.Itoa(int(j.Id)),
			JunctionID: j.Id,
			Program:    j.FixedProgram,
		}
	})
	lanes := lo.SliceToMap(junctions, func(j *mapv2.Junction) (string, []int32) {
		return strconv.Itoa(int(j.Id)), j.LaneIds
	})
	log.Infof("extract %d traffic light groups from %d junctions", len(groups), len(m.GetJunctions()))
	return NewTopology(groups, lanes)
}

// Len 信号灯组数量
func (t *Topology) Len() int {
	return len(t.Groups)
}

// LanesControlled 获取信号灯组控制的车道，未知的组返回nil
func (t *Topology) LanesControlled(groupID string) []int32 {
	return t.LanesControlledByGroups[groupID]
}

func autoKey(n int) string {
	return fmt.Sprintf("auto_%d", n)
}
