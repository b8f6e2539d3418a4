// 实体生成指标
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 实体生成的Prometheus指标
// 说明：所有方法对nil接收者安全，未启用指标时直接传nil即可
type Collector struct {
	gatherer prometheus.Gatherer

	Spawned          *prometheus.CounterVec // 按类别统计的已生成车辆/行人数
	Registrations    *prometheus.CounterVec // 按类别统计的已发出注册消息数
	ActiveGenerators *prometheus.GaugeVec   // 按类别统计的活跃生成器数
}

// NewCollector 在reg上注册指标，reg为nil时使用默认注册器
// 说明：重复注册时复用已存在的指标
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	spawned, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_spawned_total",
		Help: "Number of mobile entities spawned by the mapping federate.",
	}, []string{"kind"}), "mapping_spawned_total")
	if err != nil {
		return nil, err
	}
	registrations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_registrations_total",
		Help: "Number of registration interactions sent by the mapping federate.",
	}, []string{"kind"}), "mapping_registrations_total")
	if err != nil {
		return nil, err
	}
	active, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mapping_active_generators",
		Help: "Number of flow and agent generators that are not exhausted yet.",
	}, []string{"kind"}), "mapping_active_generators")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		Spawned:          spawned,
		Registrations:    registrations,
		ActiveGenerators: active,
	}, nil
}

// Handler 指标的HTTP处理器
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// IncSpawned 记录一个生成的车辆或行人
func (c *Collector) IncSpawned(kind string) {
	if c == nil || c.Spawned == nil {
		return
	}
	c.Spawned.WithLabelValues(kind).Inc()
}

// IncRegistrations 记录一条注册消息
func (c *Collector) IncRegistrations(kind string) {
	if c == nil || c.Registrations == nil {
		return
	}
	c.Registrations.WithLabelValues(kind).Inc()
}

// SetActiveGenerators 更新活跃生成器数
func (c *Collector) SetActiveGenerators(kind string, n int) {
	if c == nil || c.ActiveGenerators == nil {
		return
	}
	c.ActiveGenerators.WithLabelValues(kind).Set(float64(n))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
