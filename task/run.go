package task

import "flag"

const (
	SelfName = "mapping" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并定期输出心跳日志
func (ctx *Context) prepare() {
	ctx.clock.Next()
	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) vehicle flows: %d agents: %d",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.framework.ActiveVehicleFlows(), ctx.framework.ActiveAgents(),
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：把框架推进到当前时间，发送所有到期的注册消息
// 说明：消息发送失败意味着联邦已不一致，直接panic
func (ctx *Context) update() {
	if err := ctx.framework.TimeAdvance(ctx.clock.Nanos()); err != nil {
		log.Panicf("step %d: %v", ctx.clock.InternalStep, err)
	}
}

// Run 运行
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	ctx.sidecar.Step(false)
	for {
		ctx.prepare()
		// 通知准备阶段完成
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		ctx.sidecar.NotifyStepReady()
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		close := ctx.sidecar.Step(ctx.clock.IsLastStep())
		if close || ctx.closed.Load() {
			break
		}
	}
	log.Infof("mapping complete")
	ctx.Close()
}
