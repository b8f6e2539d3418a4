// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"
	"log"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供均匀分布、正态分布、指数分布与离散分布的随机数
// 说明：一次运行只创建一个引擎，由构造阶段与运行阶段的所有随机决策共享，
// 调用方全部位于同一个协程中，因此不加锁
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Uniform 生成[lo, hi)范围内均匀分布的随机数
func (e *Engine) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Float64()
}

// Gaussian 生成正态分布随机数
// 参数：mean-均值，std-标准差
func (e *Engine) Gaussian(mean, std float64) float64 {
	return mean + std*e.NormFloat64()
}

// Exponential 生成指数分布随机数
// 参数：mean-均值
func (e *Engine) Exponential(mean float64) float64 {
	return mean * e.ExpFloat64()
}

// DiscreteDistribution 按给定概率分布生成随机数
// 功能：根据权重数组生成离散分布的随机数
// 参数：weight-权重数组，每个元素表示对应索引的概率权重
// 返回：随机生成的索引值（0到len(weight)-1）
// 算法说明：
// 1. 计算总权重：遍历权重数组计算总和
// 2. 生成随机数：在[0, 总权重)范围内生成随机数
// 3. 累积概率：遍历权重数组，累积概率直到超过随机数
// 4. 返回索引：返回第一个累积概率超过随机数的索引
// 5. 错误处理：如果算法异常则panic
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	log.Panicf("randengine: DiscreteDistribution: sum: %f random: %f", sum, random)
	return -1
}
