package xasync

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// 默认配置
const (
	// DefaultInterval 两次批量写入之间的等待时间
	DefaultInterval = 5 * time.Millisecond

	// DefaultMaxSizeMB 按大小轮转的默认阈值（十进制 MB）
	DefaultMaxSizeMB = 2

	// DefaultRetryAttempts 单批写入的默认尝试次数（含首次）
	DefaultRetryAttempts = 3

	// DefaultRetryDelay 写入重试的初始退避
	DefaultRetryDelay = 50 * time.Millisecond
)

type options struct {
	maxSizeMB     int64
	compress      bool
	rotateByDay   bool
	interval      time.Duration
	logger        *slog.Logger
	retryAttempts int
	retryDelay    time.Duration
	meterProvider metric.MeterProvider
	onFatal       func(error)
	now           func() time.Time
}

func defaultOptions() *options {
	return &options{
		maxSizeMB:     DefaultMaxSizeMB,
		compress:      true,
		rotateByDay:   true,
		interval:      DefaultInterval,
		logger:        slog.Default(),
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
		meterProvider: otel.GetMeterProvider(),
		now:           time.Now,
	}
}

// Option 写入器配置选项
type Option func(*options)

// WithMaxSizeMB 设置按大小轮转的阈值（1 MB = 1,000,000 字节），0 表示不按大小轮转。
func WithMaxSizeMB(mb int64) Option {
	return func(o *options) {
		o.maxSizeMB = mb
	}
}

// WithCompress 设置是否 gzip 压缩轮转出的段
func WithCompress(enable bool) Option {
	return func(o *options) {
		o.compress = enable
	}
}

// WithRotateByDay 设置是否按天轮转
func WithRotateByDay(enable bool) Option {
	return func(o *options) {
		o.rotateByDay = enable
	}
}

// WithInterval 设置两次批量写入之间的等待时间，默认 5ms
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithLogger 设置写入器自身的诊断日志，nil 被忽略。
//
// 不要把它指回同一个写入器：写入失败时诊断日志也会失败。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRetry 设置单批写入的尝试次数（含首次）和初始退避，退避按指数增长。
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryDelay = initialDelay
	}
}

// WithMeterProvider 设置指标的 MeterProvider，默认 otel.GetMeterProvider()
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithOnFatal 设置致命错误回调，写入循环终止前调用一次。
func WithOnFatal(fn func(error)) Option {
	return func(o *options) {
		o.onFatal = fn
	}
}

// WithClock 设置按天轮转使用的时钟，主要用于测试
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
