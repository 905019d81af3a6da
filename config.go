package rxgo

import (
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// ============================================================================
// 配置选项
// ============================================================================

// Option 配置选项接口
type Option interface {
	Apply(config *Config)
}

// OptionFunc 函数形式的配置选项
type OptionFunc func(config *Config)

// Apply 应用配置
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// Config 调度器配置
type Config struct {
	// WorkQueueWorkers 工作队列的worker数量
	WorkQueueWorkers int
	// WorkQueueCapacity 工作队列容量，队列满时AddOperation阻塞
	WorkQueueCapacity int
	// DefaultPriority WorkQueueScheduler默认的任务优先级
	DefaultPriority QueuePriority
	// RateLimit 每秒允许开始执行的任务数，0表示不限制
	RateLimit float64
	// RateBurst 限流的突发容量
	RateBurst int
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		WorkQueueWorkers:  runtime.NumCPU(),
		WorkQueueCapacity: 1024,
		DefaultPriority:   PriorityNormal,
		RateLimit:         0,
		RateBurst:         1,
	}
}

// WithWorkers 设置worker数量
func WithWorkers(workers int) Option {
	return OptionFunc(func(config *Config) {
		config.WorkQueueWorkers = workers
	})
}

// WithCapacity 设置工作队列容量
func WithCapacity(capacity int) Option {
	return OptionFunc(func(config *Config) {
		config.WorkQueueCapacity = capacity
	})
}

// WithPriority 设置默认优先级
func WithPriority(priority QueuePriority) Option {
	return OptionFunc(func(config *Config) {
		config.DefaultPriority = priority
	})
}

// WithRateLimit 限制每秒开始执行的任务数
func WithRateLimit(perSecond float64, burst int) Option {
	return OptionFunc(func(config *Config) {
		config.RateLimit = perSecond
		config.RateBurst = burst
	})
}

// WithConfig 使用完整的配置
func WithConfig(cfg *Config) Option {
	return OptionFunc(func(config *Config) {
		if cfg != nil {
			*config = *cfg
		}
	})
}

// newConfig 应用选项并修正无效值
func newConfig(options ...Option) *Config {
	config := DefaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt.Apply(config)
		}
	}
	if config.WorkQueueWorkers <= 0 {
		config.WorkQueueWorkers = runtime.NumCPU()
	}
	if config.WorkQueueCapacity <= 0 {
		config.WorkQueueCapacity = 1
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 1
	}
	return config
}

// ============================================================================
// 从viper加载
// ============================================================================

// 配置键
const (
	KeyWorkers   = "rxgo.workqueue.workers"
	KeyCapacity  = "rxgo.workqueue.capacity"
	KeyPriority  = "rxgo.workqueue.priority"
	KeyRateLimit = "rxgo.workqueue.rate_limit"
	KeyRateBurst = "rxgo.workqueue.rate_burst"
)

// LoadConfig 从viper读取配置
//
// 环境变量优先于配置文件，例如RXGO_WORKQUEUE_WORKERS覆盖rxgo.workqueue.workers。
// v为nil时只读取环境变量。
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault(KeyWorkers, defaults.WorkQueueWorkers)
	v.SetDefault(KeyCapacity, defaults.WorkQueueCapacity)
	v.SetDefault(KeyPriority, defaults.DefaultPriority.String())
	v.SetDefault(KeyRateLimit, defaults.RateLimit)
	v.SetDefault(KeyRateBurst, defaults.RateBurst)

	priority, err := ParseQueuePriority(v.GetString(KeyPriority))
	if err != nil {
		return nil, err
	}

	config := &Config{
		WorkQueueWorkers:  v.GetInt(KeyWorkers),
		WorkQueueCapacity: v.GetInt(KeyCapacity),
		DefaultPriority:   priority,
		RateLimit:         v.GetFloat64(KeyRateLimit),
		RateBurst:         v.GetInt(KeyRateBurst),
	}

	if config.WorkQueueWorkers <= 0 {
		return nil, NewConfigError(KeyWorkers, config.WorkQueueWorkers, "must be positive")
	}
	if config.WorkQueueCapacity <= 0 {
		return nil, NewConfigError(KeyCapacity, config.WorkQueueCapacity, "must be positive")
	}
	if config.RateLimit < 0 {
		return nil, NewConfigError(KeyRateLimit, config.RateLimit, "must not be negative")
	}
	if config.RateBurst <= 0 {
		return nil, NewConfigError(KeyRateBurst, config.RateBurst, "must be positive")
	}

	return config, nil
}
