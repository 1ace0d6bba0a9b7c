// Package logs 提供进程级的 zap 日志初始化与访问。
// Init 是幂等的：每个组件构造时都可以安全调用，只有第一次生效。
package logs

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
	once   sync.Once
)

// Init 初始化进程级 logger（幂等）。
// 模型逻辑本身不持有全局状态，只通过此 sink 输出非致命告警。
func Init() {
	InitWithLevel("")
}

// InitWithLevel 以指定级别初始化进程级 logger，与 Init 共享同一次初始化机会。
// level 为空或无法解析时按默认级别处理。
func InitWithLevel(level string) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if level != "" {
			if lvl, err := zapcore.ParseLevel(level); err == nil {
				cfg.Level = zap.NewAtomicLevelAt(lvl)
			}
		}
		l, err := cfg.Build()
		if err != nil {
			return // 保持 Nop，日志失败不影响控制流
		}
		mu.Lock()
		logger = l
		mu.Unlock()
	})
}

// Logger 返回进程级 logger。未初始化时返回 Nop logger。
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger 替换进程级 logger（用于测试或接入外部日志体系）。
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}
