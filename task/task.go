package task

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/clock"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/framework"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity/trafficlight"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/metrics"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/output"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/input"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
	"go.mongodb.org/mongo-driver/mongo"
)

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for range retryCount {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

// Context mapping任务上下文
// 功能：包含一次运行的所有变量和状态
// 说明：持有时钟、sidecar、实体生成框架与输出目标
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理分布式模式下相关调用，包括与syncer、其他服务的交互
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 缓存文件夹
	cacheDir string

	// 实体生成框架
	framework *framework.Framework
	// 所有交互消息的去向
	emitter output.Multi
	// 注册消息输出所用的MongoDB连接，没有则为nil
	mongoClient *mongo.Client

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的mapping任务上下文
// 参数：
//   - job: 任务名称
//   - cacheDir: 缓存目录
//   - c: 配置对象
//   - sidecar: 外部sidecar实例
//   - collector: 指标收集器，可以为nil
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 加载实体生成配置与路网
// 2. 创建输出：交通模拟器（等待其就绪）与MongoDB集合，二者都是可选的
// 3. 创建实体生成框架，所有随机决策共享同一个随机数引擎
// 4. 注册RPC服务到sidecar并启动sidecar服务（如果需要）
func NewContext(
	job string,
	cacheDir string,
	c config.Config,
	sidecar *syncer.Sidecar,
	collector *metrics.Collector,
	startSidecarServe bool,
) *Context {
	ctx := &Context{
		job:            job,
		cacheDir:       cacheDir,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
	}

	log.Infof("job %s starts", job)
	// 下载所有启动所需的数据
	initRes := input.Init(c, ctx.cacheDir)
	ctx.runtimeConfig = config.NewRuntimeConfig(c, initRes.Mapping)
	ctx.clock = clock.New(ctx.runtimeConfig.C.Step)

	if addr := c.Output.City; addr != "" {
		if err := waitForServerReady(addr, 30, time.Second); err != nil {
			log.Panicf("city is not ready: %v", err)
		}
		ctx.emitter = append(ctx.emitter, output.NewCityEmitter(addr, c.Output.FirstPersonID))
	}
	if path := c.Output.Registrations; path != nil {
		if c.Input.URI == "" {
			log.Panicf("registrations output %s.%s needs mongodb uri", path.DB, path.Col)
		}
		ctx.mongoClient = mongoutil.NewClient(c.Input.URI)
		coll := mongoutil.GetMongoColl(ctx.mongoClient, *path)
		ctx.emitter = append(ctx.emitter, output.NewMongoEmitter(coll))
	}
	if len(ctx.emitter) == 0 {
		log.Warn("no output is configured, all interactions are dropped")
	}

	opts := []framework.Option{framework.WithMetrics(collector)}
	if initRes.Map != nil {
		opts = append(opts, framework.WithTopology(trafficlight.FromMap(initRes.Map)))
	}
	ctx.framework = framework.New(
		ctx.runtimeConfig.Mapping,
		ctx.emitter,
		randengine.New(ctx.runtimeConfig.C.Seed),
		opts...,
	)

	ctx.clock.Register(ctx.sidecar)

	// sidecar协程，用于提供gRPC服务
	if startSidecarServe {
		go func() {
			err := ctx.sidecar.Serve()
			if err != nil {
				log.Panicf("failed to serve: %v", err)
			}
			ctx.sidecarCloseCh <- struct{}{}
		}()
	}

	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Framework() *framework.Framework {
	return ctx.framework
}

func (ctx *Context) Init() {
	ctx.clock.Init()
	if err := ctx.framework.Init(); err != nil {
		log.Panicf("failed to send vehicle types: %v", err)
	}
	log.Infof("vehicle flows: %d, agents: %d", ctx.framework.ActiveVehicleFlows(), ctx.framework.ActiveAgents())
}

func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	ctx.sidecar.Close()
	// wait for graceful stop
	<-ctx.sidecarCloseCh
	if ctx.mongoClient != nil {
		if err := ctx.mongoClient.Disconnect(context.Background()); err != nil {
			log.Warnf("failed to disconnect mongodb: %v", err)
		}
	}
	ctx.closed.Store(true)
}
