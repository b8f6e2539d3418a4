package prototype

import (
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
)

// Registry 原型注册表
// 功能：按名称查找实体原型
// 说明：保留配置中的顺序，同名原型以先注册者为准
type Registry struct {
	data       map[string]*config.Prototype
	prototypes []*config.Prototype
}

// NewRegistry 创建原型注册表
// 功能：注册配置中所有合法的原型
// 参数：pbs-配置中的原型列表，其中的nil与无名原型会被跳过
// 返回：原型注册表
func NewRegistry(prototypes []*config.Prototype) *Registry {
	r := &Registry{
		data:       make(map[string]*config.Prototype),
		prototypes: make([]*config.Prototype, 0, len(prototypes)),
	}
	for _, p := range prototypes {
		r.Add(p)
	}
	return r
}

// Add 注册原型
func (r *Registry) Add(p *config.Prototype) {
	if p == nil {
		return
	}
	if p.Name == "" {
		log.Warn("skip prototype without name")
		return
	}
	if _, ok := r.data[p.Name]; ok {
		log.Warnf("duplicated prototype %s, keep the first one", p.Name)
		return
	}
	r.data[p.Name] = p
	r.prototypes = append(r.prototypes, p)
}

// Get 根据名称获取原型，名称为空或不存在时返回nil
func (r *Registry) Get(name string) *config.Prototype {
	if name == "" {
		return nil
	}
	return r.data[name]
}

// GetOrError 根据名称获取原型，不存在则返回error
func (r *Registry) GetOrError(name string) (*config.Prototype, error) {
	if p := r.Get(name); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("no prototype named %q", name)
}

// Len 已注册的原型数量
func (r *Registry) Len() int {
	return len(r.prototypes)
}

// All 按注册顺序返回所有原型
func (r *Registry) All() []*config.Prototype {
	return r.prototypes
}
