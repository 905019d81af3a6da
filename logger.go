package rxgo

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger 设置库内部使用的日志记录器，默认不输出任何日志
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// Logger 返回库内部使用的日志记录器
func Logger() *zerolog.Logger {
	return logger.Load()
}
