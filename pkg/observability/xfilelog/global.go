package xfilelog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// =============================================================================
// 全局 Logger
//
// 定位：进程内只需一份文件日志的程序，用法同 slog.Default。
// 需要多个日志文件或显式管理生命周期时直接使用 New。
// =============================================================================

// globalLogger 全局 Logger 实例（并发安全）
var globalLogger atomic.Pointer[Logger]

// globalMu 保护 globalOnce 及其 Do 执行，也用于 Init、Shutdown 和 ResetDefault
var globalMu sync.Mutex

// globalOnce 确保全局 Logger 只初始化一次
var globalOnce sync.Once

// Init 按配置文件初始化全局 Logger，只有第一次调用生效。
//
// 配置文件缺失、无法解析或内容非法时，记录一条警告并改用默认配置，不返回错误。
// 已经初始化过时返回现有 Logger 和 [ErrAlreadyInitialized]。
// 日志目录无法创建时返回错误，全局 Logger 保持未初始化。
func Init(ctx context.Context, configPath string) (*Logger, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if l := globalLogger.Load(); l != nil {
		return l, ErrAlreadyInitialized
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		slog.Warn("xfilelog: config not usable, using defaults",
			slog.String("path", configPath), slog.Any("error", err))
		cfg = DefaultConfig()
	}

	l, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	globalLogger.Store(l)
	// 占用 once，Default 不再按默认配置另建一份
	globalOnce.Do(func() {})
	return l, nil
}

// defaultLogger 按默认配置创建全局 Logger（惰性初始化）
func defaultLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalOnce.Do(func() {
		l, err := New(context.Background(), DefaultConfig())
		if err != nil {
			// 默认参数不应失败；失败时降级为只输出到标准错误
			fmt.Fprintf(os.Stderr, "xfilelog: failed to build default logger: %v, using stderr\n", err)
			l = newStdoutOnly(os.Stderr)
		}
		globalLogger.Store(l)
	})
	return globalLogger.Load()
}

// Default 返回全局 Logger，首次调用时按默认配置创建。
func Default() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return defaultLogger()
}

// Shutdown 关闭全局 Logger 并清空全局状态，之后的 Default 会重新创建。
// 从未初始化时什么也不做。
func Shutdown(ctx context.Context) error {
	globalMu.Lock()
	l := globalLogger.Swap(nil)
	globalOnce = sync.Once{}
	globalMu.Unlock()

	if l == nil {
		return nil
	}
	return l.Close(ctx)
}

// ResetDefault 重置全局 Logger 为未初始化状态，不关闭现有 Logger（仅用于测试）
func ResetDefault() {
	globalMu.Lock()
	globalLogger.Store(nil)
	globalOnce = sync.Once{}
	globalMu.Unlock()
}

// InstallSlog 把全局 Logger 设为 slog 的默认后端，log 包的输出也随之进入日志文件。
func InstallSlog() {
	slog.SetDefault(Default().Slog())
}

// =============================================================================
// 便利函数
// =============================================================================

// Debug 使用全局 Logger 记录 Debug 级别日志
func Debug(msg string) { Default().logSkip(LevelDebug, msg, 1) }

// Info 使用全局 Logger 记录 Info 级别日志
func Info(msg string) { Default().logSkip(LevelInfo, msg, 1) }

// Warn 使用全局 Logger 记录 Warn 级别日志
func Warn(msg string) { Default().logSkip(LevelWarn, msg, 1) }

// Error 使用全局 Logger 记录 Error 级别日志
func Error(msg string) { Default().logSkip(LevelError, msg, 1) }
