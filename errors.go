package rxgo

import (
	"errors"
	"fmt"
)

// 序列形状错误
var (
	// ErrNoElements 序列没有任何元素
	ErrNoElements = errors.New("rxgo: sequence contains no elements")

	// ErrMoreThanOneElement 序列包含多于一个元素
	ErrMoreThanOneElement = errors.New("rxgo: sequence contains more than one element")

	// ErrSchedulerStopped 调度器已经停止，不再接受任务
	ErrSchedulerStopped = errors.New("rxgo: scheduler stopped")
)

// ConfigError 配置项无效
type ConfigError struct {
	Key     string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rxgo: invalid config %s=%v: %s", e.Key, e.Value, e.Message)
}

// NewConfigError 创建配置错误
func NewConfigError(key string, value any, message string) *ConfigError {
	return &ConfigError{Key: key, Value: value, Message: message}
}

// fatalError 报告调用方的编程错误并终止当前调用链
func fatalError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger().Error().Msg(msg)
	panic("rxgo: " + msg)
}
