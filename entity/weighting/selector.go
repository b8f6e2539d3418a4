// 按权重选择对象的选择器
package weighting

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// Selector 按权重选择对象
type Selector[T any] interface {
	// Next 选择下一个对象
	Next() T
}

// Item 带权重的候选对象
type Item[T any] struct {
	Value  T
	Weight float64
}

// NewItems 根据权重函数构造候选列表，权重不为正的对象被排除
func NewItems[T any](values []T, weight func(T) float64) []Item[T] {
	return lo.FilterMap(values, func(v T, _ int) (Item[T], bool) {
		w := weight(v)
		return Item[T]{Value: v, Weight: w}, w > 0
	})
}

// New 创建选择器
// 参数：items-候选列表（权重不为正的条目被排除），rng-随机数引擎，fixedOrder-是否使用确定性选择
// 返回：选择器，没有可选条目时返回nil
func New[T any](items []Item[T], rng *randengine.Engine, fixedOrder bool) Selector[T] {
	items = lo.Filter(items, func(it Item[T], _ int) bool { return it.Weight > 0 })
	if len(items) == 0 {
		return nil
	}
	if fixedOrder {
		return NewDeterministicSelector(items)
	}
	return NewStochasticSelector(items, rng)
}

// StochasticSelector 随机选择器
// 功能：每次按权重比例独立随机抽取
type StochasticSelector[T any] struct {
	rng     *randengine.Engine
	values  []T
	weights []float64
}

// NewStochasticSelector 创建随机选择器，items中的权重必须为正
func NewStochasticSelector[T any](items []Item[T], rng *randengine.Engine) *StochasticSelector[T] {
	if len(items) == 0 {
		log.Panicf("weighting: no items for stochastic selector")
	}
	return &StochasticSelector[T]{
		rng:     rng,
		values:  lo.Map(items, func(it Item[T], _ int) T { return it.Value }),
		weights: lo.Map(items, func(it Item[T], _ int) float64 { return it.Weight }),
	}
}

func (s *StochasticSelector[T]) Next() T {
	return s.values[s.rng.DiscreteDistribution(s.weights)]
}

// DeterministicSelector 确定性选择器
// 功能：不使用随机数，使各对象被选中的次数始终贴近其权重比例
// 算法说明：
// 1. 记录每个对象已被选中的次数
// 2. 每次选择"期望次数-实际次数"最大的对象，期望次数=(总次数+1)*权重/总权重
// 3. 差值相同时选择靠前的对象
type DeterministicSelector[T any] struct {
	items    []Item[T]
	total    float64
	selected []int
	count    int
}

// NewDeterministicSelector 创建确定性选择器，items中的权重必须为正
func NewDeterministicSelector[T any](items []Item[T]) *DeterministicSelector[T] {
	if len(items) == 0 {
		log.Panicf("weighting: no items for deterministic selector")
	}
	return &DeterministicSelector[T]{
		items:    items,
		total:    lo.SumBy(items, func(it Item[T]) float64 { return it.Weight }),
		selected: make([]int, len(items)),
	}
}

func (s *DeterministicSelector[T]) Next() T {
	s.count++
	best, bestLag := 0, 0.
	for i, it := range s.items {
		lag := float64(s.count)*it.Weight/s.total - float64(s.selected[i])
		if i == 0 || lag > bestLag {
			best, bestLag = i, lag
		}
	}
	s.selected[best]++
	return s.items[best].Value
}
