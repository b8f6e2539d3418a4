package stationary

import "github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"

// Build 为配置中的每个固定设施创建生成器
// 说明：顺序为路侧单元、交通管理中心、服务器、充电站，nil条目被跳过
func Build(m *config.Mapping) []Spawner {
	var res []Spawner
	for _, c := range m.RoadSideUnits {
		if c != nil {
			res = append(res, NewRoadSideUnit(c))
		}
	}
	for _, c := range m.TrafficManagementCenters {
		if c != nil {
			res = append(res, NewTrafficManagementCenter(c))
		}
	}
	for _, c := range m.Servers {
		if c != nil {
			res = append(res, NewServer(c))
		}
	}
	for _, c := range m.ChargingStations {
		if c != nil {
			res = append(res, NewChargingStation(c))
		}
	}
	return res
}
