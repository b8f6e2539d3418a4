package config

// RuntimeConfig 运行时配置
// 功能：存储运行时的配置信息
// 说明：将YAML配置与加载完成的实体生成配置组合为运行时可用的配置对象
type RuntimeConfig struct {
	All     Config   // 全部配置
	C       Control  // 全局控制配置
	Mapping *Mapping // 实体生成配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象并补全默认值
// 参数：config-原始配置对象，mapping-实体生成配置
// 返回：初始化的运行时配置指针
// 算法说明：
// 1. 创建运行时配置对象
// 2. 设置默认值：未指定时间间隔时默认为1秒；未指定mapping时使用空配置
func NewRuntimeConfig(config Config, mapping *Mapping) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = 1
	}
	if mapping == nil {
		mapping = &Mapping{}
	}
	rc.Mapping = mapping

	return rc
}
