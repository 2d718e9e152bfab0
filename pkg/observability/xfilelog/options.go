package xfilelog

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/omeyang/xlogwriter/pkg/observability/xasync"
)

// Option Logger 配置选项函数
type Option func(*options)

type options struct {
	stdout        io.Writer
	logger        *slog.Logger
	now           func() time.Time
	writerOptions []xasync.Option
}

func defaultOptions() *options {
	return &options{
		stdout: os.Stdout,
		now:    time.Now,
	}
}

// WithStdout 设置 show_std 镜像输出的目标，默认 os.Stdout
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.stdout = w
		}
	}
}

// WithLogger 设置写入器自身诊断信息的 logger。
//
// 默认输出到标准错误。不要传入以本 Logger 为后端的 slog.Logger，诊断信息会回写自身。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock 设置日志行时间戳使用的时钟，主要用于测试
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithWriterOptions 追加底层 xasync.Writer 的选项（写入间隔、重试、指标等）。
// 大小阈值、压缩和按天轮转始终以 Config 为准。
func WithWriterOptions(opts ...xasync.Option) Option {
	return func(o *options) {
		o.writerOptions = append(o.writerOptions, opts...)
	}
}
