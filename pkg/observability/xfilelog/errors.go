package xfilelog

import "errors"

var (
	// ErrUnknownLevel 无法识别的级别名
	ErrUnknownLevel = errors.New("xfilelog: unknown level")

	// ErrInvalidConfig 配置内容非法
	ErrInvalidConfig = errors.New("xfilelog: invalid config")

	// ErrAlreadyInitialized 全局 Logger 已经初始化，本次 Init 的配置被忽略
	ErrAlreadyInitialized = errors.New("xfilelog: already initialized")

	// ErrAlreadyWatching 已经在监视配置文件
	ErrAlreadyWatching = errors.New("xfilelog: already watching config")

	// ErrClosed Logger 已关闭
	ErrClosed = errors.New("xfilelog: logger closed")
)
