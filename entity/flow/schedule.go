package flow

import (
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

const nsPerSecond = 1e9

// departureOffset 计算第k辆车（从0开始）相对开始时间的出发偏移
// 参数：mode-生成模式，k-已生成车辆数，rate-目标流量（辆/秒），duration-生成区间长度（秒），
// prev-上一辆车的偏移（秒，仅poisson使用），noise-是否为constant模式加入扰动
// 返回：偏移（秒），ok=false表示区间内不会再有车辆
// 算法说明：
// constant：x=k/rate，扰动时x=(k+U(0,1))/rate
// poisson：x=prev+Exp(1/rate)，第一辆车从0开始计
// 斜坡模式的累计需求N(x)为线性流量曲线下的面积，求解N(x)=k+1：
// grow：流量从0增长到rate，N(x)=rate*x²/(2D)，x=sqrt(2(k+1)D/rate)
// shrink：流量从rate下降到0，N(x)=rate*x-rate*x²/(2D)，x=D-sqrt(D²-2D(k+1)/rate)
// grow_and_shrink：中点达到rate，前半段x=sqrt((k+1)D/rate)，后半段x=D-sqrt((D/2-(k+1)/rate)D)
func departureOffset(
	rng *randengine.Engine, mode config.SpawningMode,
	k int, rate, duration, prev float64, noise bool,
) (float64, bool) {
	switch mode {
	case config.SpawningModePoisson:
		if k == 0 {
			prev = 0
		}
		return prev + rng.Exponential(1/rate), true
	case config.SpawningModeGrow:
		return math.Sqrt(2 * float64(k+1) * duration / rate), true
	case config.SpawningModeShrink:
		d := duration*duration - 2*duration*float64(k+1)/rate
		if d < 0 {
			return 0, false
		}
		return duration - math.Sqrt(d), true
	case config.SpawningModeGrowAndShrink:
		n := float64(k + 1)
		if n <= rate*duration/4 {
			return math.Sqrt(n * duration / rate), true
		}
		d := (duration/2 - n/rate) * duration
		if d < 0 {
			return 0, false
		}
		return duration - math.Sqrt(d), true
	default:
		if noise {
			return (float64(k) + rng.Float64()) / rate, true
		}
		return float64(k) / rate, true
	}
}

// RandomizeStartingTime 随机化开始时间
// 返回：max(0, round(start+U(-20, 20)))（秒）
func RandomizeStartingTime(rng *randengine.Engine, start float64) float64 {
	return math.Max(0, math.Round(start+rng.Uniform(-20, 20)))
}

func secondsToNanos(s float64) int64 {
	if s >= math.MaxInt64/nsPerSecond {
		return math.MaxInt64
	}
	return int64(math.Round(s * nsPerSecond))
}
