package config

// InputPath 指定数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入/输出路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，MongoDB来源支持缓存机制
type InputPath struct {
	DB        string `yaml:"db"`                   // 数据库名
	Col       string `yaml:"col"`                  // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.pb
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件的完整路径
// 返回：缓存文件路径字符串
// 算法说明：
// 1. 如果指定了缓存路径，直接返回
// 2. 否则使用默认命名规则：{数据库名}.{集合名}.pb
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".pb"
}

// Input 指定所有输入数据的配置项
// 功能：定义mapping联邦成员的输入数据配置
// 说明：mapping为实体生成配置（必须），map为路网（可选，用于信号灯分组拓扑）
type Input struct {
	URI     string     `yaml:"uri"`           // MongoDB连接字符串
	Mapping InputPath  `yaml:"mapping"`       // 实体生成配置
	Map     *InputPath `yaml:"map,omitempty"` // 地图
}

// ControlStep 指定模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 控制配置
// 功能：定义时间推进与随机数等核心控制参数
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed,omitempty"` // 随机数种子，整个运行过程共享同一个随机数引擎
}

// Output 输出配置
// 功能：定义生成的交互消息的去向
// 说明：city为交通模拟器地址（车辆、行人通过AddPerson写入），registrations为注册消息写入的MongoDB集合
type Output struct {
	City          string     `yaml:"city,omitempty"`
	FirstPersonID int32      `yaml:"first_person_id,omitempty"` // 生成的第一个人的ID，避免与交通模拟器中已有的人冲突
	Registrations *InputPath `yaml:"registrations,omitempty"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`   // 输入
	Control Control `yaml:"control"` // 模拟过程控制
	Output  Output  `yaml:"output"`  // 输出
}
