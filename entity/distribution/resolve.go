package distribution

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// Resolve 将生成器的类型引用展开为带权重的原型列表
// 功能：处理具名分布引用与内联类型列表（内联条目本身也可以引用分布）
// 参数：types-内联类型列表，distribution-具名分布名
// 返回：展开后的原型列表（均为拷贝），无法解析时返回空列表
// 算法说明：
// 1. 指定了具名分布：返回该分布的拷贝；分布不存在时记录警告并返回空列表
// 2. 内联列表中名称与某个分布相同的条目：把分布的每个成员展开为
// 成员权重/分布总权重*条目权重；条目权重在列表仅有一个且未配置权重的条目时为1，否则为配置值（未配置为0）
// 3. 其余条目原样保留
// 4. 分布总权重不为正时，条目权重在成员间平均分配
func (r *Registry) Resolve(types []*config.Prototype, distribution string) []*config.Prototype {
	if distribution != "" {
		if !r.Has(distribution) {
			log.Warnf("unknown type distribution %s", distribution)
			return []*config.Prototype{}
		}
		return copyTypes(r.data[distribution])
	}
	types = lo.Compact(types)
	res := make([]*config.Prototype, 0, len(types))
	for _, t := range types {
		members, ok := r.data[t.Name]
		if !ok {
			res = append(res, t.Copy())
			continue
		}
		entryWeight := t.GetWeight()
		if len(types) == 1 && t.Weight == nil {
			entryWeight = 1
		}
		total := lo.SumBy(members, (*config.Prototype).GetWeight)
		for _, m := range members {
			w := entryWeight / float64(len(members))
			if total > 0 {
				w = m.GetWeight() / total * entryWeight
			}
			res = append(res, m.WithWeight(w))
		}
	}
	return res
}
