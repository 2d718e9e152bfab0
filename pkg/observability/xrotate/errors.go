package xrotate

import "errors"

// 配置校验错误
var (
	// ErrEmptyFilename 文件名为空
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidMaxSize 大小阈值无效
	ErrInvalidMaxSize = errors.New("xrotate: invalid MaxSizeMB")

	// ErrInvalidMaxBackups MaxBackups 值无效（必须在 0~1024 范围内）
	ErrInvalidMaxBackups = errors.New("xrotate: invalid MaxBackups")

	// ErrInvalidMaxAge MaxAgeDays 值无效（必须在 0~3650 范围内）
	ErrInvalidMaxAge = errors.New("xrotate: invalid MaxAgeDays")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）
	ErrInvalidFileMode = errors.New("xrotate: invalid FileMode")

	// ErrInvalidLevel 压缩级别无效
	ErrInvalidLevel = errors.New("xrotate: invalid compression level")
)

// 运行期错误
var (
	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")

	// ErrDirectory 日志目录不存在且无法创建
	ErrDirectory = errors.New("xrotate: log directory unavailable")

	// ErrWrite 活动文件无法打开或写入
	ErrWrite = errors.New("xrotate: write active file")

	// ErrRename 轮转时单个文件改名失败（可恢复）
	ErrRename = errors.New("xrotate: rename segment")

	// ErrCompress 压缩单个段失败（非致命）
	ErrCompress = errors.New("xrotate: compress segment")
)
