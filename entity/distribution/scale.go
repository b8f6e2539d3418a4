package distribution

import (
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// Scaler 交通需求缩放器
// 功能：按全局缩放系数缩放各车流的最大车辆数与目标流量
// 说明：各车流缩放后的小数部分累积在remainder中，累积满1时补到当前车流上，
// 使缩放后的总车辆数与精确值的误差小于1（逐个向下取整会系统性少算）
type Scaler struct {
	factor    float64
	remainder float64
}

// NewScaler 创建缩放器
func NewScaler(factor float64) *Scaler {
	return &Scaler{factor: factor}
}

// Enabled 缩放系数是否不为1（容差1e-4）
func (s *Scaler) Enabled() bool {
	return math.Abs(s.factor-1) > 1e-4
}

// ScaleCount 缩放最大车辆数，不限数量的车流不参与缩放
func (s *Scaler) ScaleCount(n int) int {
	if n == config.Unlimited {
		return n
	}
	exact := float64(n) * s.factor
	s.remainder += exact - math.Floor(exact)
	carry := math.Floor(s.remainder)
	s.remainder -= carry
	return int(math.Floor(exact) + carry)
}

// ScaleFlow 缩放目标流量（四舍五入）
func (s *Scaler) ScaleFlow(flow float64) float64 {
	return math.Round(flow * s.factor)
}

// Remainder 当前累积的小数部分
func (s *Scaler) Remainder() float64 {
	return s.remainder
}
