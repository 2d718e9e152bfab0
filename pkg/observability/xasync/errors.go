package xasync

import (
	"errors"

	"github.com/omeyang/xlogwriter/pkg/observability/xrotate"
)

// 配置错误
var (
	// ErrInvalidInterval 批量写入间隔必须为正数
	ErrInvalidInterval = errors.New("xasync: interval must be positive")

	// ErrInvalidRetry 重试次数必须 >= 1
	ErrInvalidRetry = errors.New("xasync: retry attempts must be >= 1")
)

// 生命周期错误
var (
	// ErrAlreadyStarted Start 被重复调用
	ErrAlreadyStarted = errors.New("xasync: writer already started")

	// ErrNotStarted 写入器尚未 Start
	ErrNotStarted = errors.New("xasync: writer not started")

	// ErrStopped 写入循环已经退出
	ErrStopped = errors.New("xasync: writer stopped")
)

// 致命 I/O 错误
var (
	// ErrDirectory 日志目录不存在且无法创建。与 xrotate.ErrDirectory 是同一个值。
	ErrDirectory = xrotate.ErrDirectory

	// ErrWriteFailed 活动文件在重试耗尽后仍无法写入，写入循环已终止。
	// 未写入的消息保留在队列中。
	ErrWriteFailed = errors.New("xasync: write failed")
)
