package distribution

import (
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/randengine"
)

// Registry 类型分布注册表
// 功能：保存配置中具名类型分布的副本，负责分布展开与权重随机化
// 说明：注册时深拷贝，随机化不会修改原始配置
type Registry struct {
	data map[string][]*config.Prototype
}

// NewRegistry 创建类型分布注册表
// 参数：distributions-配置中的具名类型分布，其中的nil条目会被跳过
func NewRegistry(distributions map[string][]*config.Prototype) *Registry {
	r := &Registry{
		data: make(map[string][]*config.Prototype, len(distributions)),
	}
	for name, types := range distributions {
		r.data[name] = copyTypes(types)
	}
	return r
}

// Has 是否存在指定名称的分布
func (r *Registry) Has(name string) bool {
	_, ok := r.data[name]
	return ok
}

// ByName 根据名称获取分布，名称为空或不存在时返回空列表
func (r *Registry) ByName(name string) []*config.Prototype {
	if types, ok := r.data[name]; ok {
		return types
	}
	return []*config.Prototype{}
}

// Names 按字典序返回所有分布名
func (r *Registry) Names() []string {
	names := lo.Keys(r.data)
	slices.Sort(names)
	return names
}

// RandomizeAll 随机化所有分布的权重
// 说明：按分布名的字典序依次处理，保证固定种子下结果可复现
func (r *Registry) RandomizeAll(rng *randengine.Engine, mode config.WeightResidual) {
	for _, name := range r.Names() {
		Randomize(rng, r.data[name], mode)
	}
}

func copyTypes(types []*config.Prototype) []*config.Prototype {
	return lo.FilterMap(types, func(p *config.Prototype, _ int) (*config.Prototype, bool) {
		return p.Copy(), p != nil
	})
}
