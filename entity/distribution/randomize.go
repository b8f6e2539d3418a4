package distribution

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// Randomize 在保持权重总和不变的前提下随机扰动权重
// 功能：对所有正权重条目按正态分布扰动权重
// 参数：rng-随机数引擎，types-待扰动的列表（原地修改），mode-残差分配方式
// 算法说明：
// 1. 只处理权重为正的条目，总和sum只统计这些条目
// 2. 新权重~N(w, sum/100)，保留两位小数，并限制在[w-sum/100, w+sum/100]且不小于0
// 3. 逐个从剩余总和中减去新权重，记录最后一个被扰动的条目
// 4. 残差（剩余总和）：last模式全部加到最后一个条目；proportional模式按新权重比例分配给所有条目
func Randomize(rng *randengine.Engine, types []*config.Prototype, mode config.WeightResidual) {
	positive := lo.Filter(types, func(p *config.Prototype, _ int) bool {
		return p != nil && p.GetWeight() > 0
	})
	if len(positive) == 0 {
		return
	}
	sum := lo.SumBy(positive, (*config.Prototype).GetWeight)
	dev := sum / 100
	remaining := sum
	var last *config.Prototype
	for _, p := range positive {
		w := *p.Weight
		newWeight := math.Round(rng.Gaussian(w, dev)*100) / 100
		newWeight = math.Max(lo.Clamp(newWeight, w-dev, w+dev), 0)
		p.Weight = &newWeight
		remaining -= newWeight
		last = p
	}
	if mode == config.WeightResidualLast {
		w := math.Round((*last.Weight+remaining)*100) / 100
		if w >= 0 {
			last.Weight = &w
			return
		}
		// 最后一个条目不足以吸收残差，退化为按比例分配
	}
	newSum := sum - remaining
	if newSum <= 0 {
		// 所有条目都被截断为0
		w := sum
		last.Weight = &w
		return
	}
	factor := sum / newSum
	for _, p := range positive {
		w := *p.Weight * factor
		p.Weight = &w
	}
}
