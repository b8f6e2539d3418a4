package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// Clock 仿真时钟
// 功能：管理mapping联邦成员的时间推进，与其他联邦成员保持相同的步长
// 说明：维护当前仿真时间与步数，提供纳秒视图与Now RPC
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建时钟
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Next 前进一步
func (c *Clock) Next() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Nanos 当前时间（纳秒）
func (c *Clock) Nanos() int64 {
	return int64(c.T*1e9 + .5)
}

// IsLastStep 当前步之后是否已到达结束步
func (c *Clock) IsLastStep() bool {
	return c.InternalStep+1 >= c.END_STEP
}

// String 获取时钟的字符串表示（HH:MM:SS）
func (c *Clock) String() string {
	hour, minute, second := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, int(second))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
