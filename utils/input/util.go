package input

import (
	"fmt"
	"os"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// mapIDs 地图ID集合
// 功能：存储各种地图元素的ID集合，用于位置验证
type mapIDs struct {
	aoiIDs  map[int32]struct{} // AOI区域ID集合
	laneIDs map[int32]struct{} // 车道ID集合
}

func newMapIDs(m *mapv2.Map) mapIDs {
	ids := mapIDs{
		aoiIDs:  make(map[int32]struct{}, len(m.Aois)),
		laneIDs: make(map[int32]struct{}, len(m.Lanes)),
	}
	for _, v := range m.Aois {
		ids.aoiIDs[v.Id] = struct{}{}
	}
	for _, v := range m.Lanes {
		ids.laneIDs[v.Id] = struct{}{}
	}
	return ids
}

// checkPositionValid 检查位置有效性
// 功能：验证位置信息是否符合逻辑规则和地图约束
// 参数：pos-位置信息，ids-地图ID集合
// 返回：nil表示位置有效（或未配置位置）
// 算法说明：
// 1. 检查位置类型：不能同时存在AOI位置和车道位置
// 2. 验证AOI位置：检查AOI ID是否在有效集合中
// 3. 验证车道位置：检查车道ID是否在有效集合中
// 4. 只有平面坐标的位置视为有效
func checkPositionValid(pos *config.Position, ids mapIDs) error {
	if pos == nil {
		return nil
	}
	if pos.AoiID != nil && pos.LaneID != nil {
		return fmt.Errorf("both aoi %d and lane %d are set", *pos.AoiID, *pos.LaneID)
	}
	if pos.AoiID != nil {
		if _, ok := ids.aoiIDs[*pos.AoiID]; !ok {
			return fmt.Errorf("aoi %d is not in the map", *pos.AoiID)
		}
	}
	if pos.LaneID != nil {
		if _, ok := ids.laneIDs[*pos.LaneID]; !ok {
			return fmt.Errorf("lane %d is not in the map", *pos.LaneID)
		}
	}
	return nil
}

// CheckPositions 检查配置中所有位置是否在路网中
// 返回：每个无效位置对应一个错误
func CheckPositions(m *config.Mapping, ids mapIDs) []error {
	var errs []error
	check := func(what string, i int, pos *config.Position) {
		if err := checkPositionValid(pos, ids); err != nil {
			errs = append(errs, fmt.Errorf("%s %d: %w", what, i, err))
		}
	}
	for i, v := range m.Vehicles {
		if v != nil {
			check("vehicle origin", i, v.Origin)
			check("vehicle destination", i, v.Destination)
		}
	}
	for i, a := range m.Agents {
		if a != nil {
			check("agent origin", i, a.Origin)
			check("agent destination", i, a.Destination)
		}
	}
	for i, r := range m.RoadSideUnits {
		if r != nil {
			check("rsu", i, r.Position)
		}
	}
	for i, c := range m.ChargingStations {
		if c != nil {
			check("charging station", i, c.Position)
		}
	}
	for i, od := range m.OriginDestinationMatrices {
		if od == nil {
			continue
		}
		for _, p := range od.Points {
			if p != nil {
				check("od point of matrix", i, p.Position)
			}
		}
	}
	return errs
}

// preCheckCache 预检查缓存目录
// 功能：验证输入缓存目录的有效性，决定是否启用缓存功能
// 参数：cacheDir-缓存目录路径
// 返回：true表示启用缓存，false表示禁用缓存
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		log.Info("disable input cache")
		return false
	} else {
		if stat, err := os.Stat(cacheDir); err == nil && stat.IsDir() {
			// 文件夹存在
			log.Infof("enable input cache at %s", cacheDir)
			return true
		} else {
			log.Errorf("disable input cache because invalid dir %s (not exist or file)", cacheDir)
			return false
		}
	}
}
