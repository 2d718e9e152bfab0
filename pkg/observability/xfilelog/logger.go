package xfilelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlogwriter/pkg/config/xconf"
	"github.com/omeyang/xlogwriter/pkg/observability/xasync"
)

// Logger 按级别过滤、格式化日志行并交给异步写入器落盘。
//
// 所有方法并发安全。级别掩码只决定是否写文件；show_std 打开时
// 每条日志都会打印到标准输出，不受掩码影响。
type Logger struct {
	w    *xasync.Writer
	opts *options
	log  *slog.Logger

	levels  atomic.Uint32
	showStd atomic.Bool

	stdMu sync.Mutex

	watchMu sync.Mutex
	watcher *xconf.Watcher

	// reloadMu 串行化配置重载，保护 cfg
	reloadMu sync.Mutex
	cfg      Config

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New 按 cfg 创建 Logger 并启动后台写入。
//
// 日志目录无法创建时返回包装 [xasync.ErrDirectory] 的错误。
// ctx 被取消时后台写入停止，等价于 Close 的前半段。
func New(ctx context.Context, cfg Config, opts ...Option) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	wopts := slices.Concat(
		[]xasync.Option{xasync.WithLogger(o.logger)},
		o.writerOptions,
		[]xasync.Option{
			xasync.WithMaxSizeMB(cfg.MaxFileSize),
			xasync.WithCompress(cfg.Compression),
			xasync.WithRotateByDay(cfg.RotateByDay),
		},
	)
	w, err := xasync.New(cfg.Filename, wopts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	l := &Logger{
		w:    w,
		opts: o,
		log:  o.logger.With(slog.String("component", "xfilelog")),
	}
	l.cfg = cfg
	l.apply(cfg)
	return l, nil
}

// newStdoutOnly 创建不写文件、只镜像到 out 的 Logger，用于全局默认 Logger 的降级
func newStdoutOnly(out io.Writer) *Logger {
	o := defaultOptions()
	o.stdout = out
	o.logger = slog.New(slog.DiscardHandler)
	l := &Logger{opts: o, log: o.logger}
	l.levels.Store(uint32(LevelAll))
	l.showStd.Store(true)
	return l
}

func (l *Logger) apply(cfg Config) {
	l.levels.Store(uint32(cfg.Levels()))
	l.showStd.Store(cfg.ShowStd)
}

// Levels 返回当前写文件的级别掩码
func (l *Logger) Levels() Level {
	return Level(l.levels.Load())
}

// SetLevels 替换写文件的级别掩码，0 表示全部级别
func (l *Logger) SetLevels(mask Level) {
	if mask&LevelAll == 0 {
		mask = LevelAll
	}
	l.levels.Store(uint32(mask & LevelAll))
}

// SetShowStd 开关标准输出镜像
func (l *Logger) SetShowStd(enable bool) {
	l.showStd.Store(enable)
}

// Enabled 报告 level 的日志是否会产生任何输出
func (l *Logger) Enabled(level Level) bool {
	return l.Levels().Has(level) || l.showStd.Load()
}

// Path 返回当前活动日志文件路径；只镜像标准输出的 Logger 返回空串
func (l *Logger) Path() string {
	if l.w == nil {
		return ""
	}
	return l.w.Path()
}

// Writer 返回底层写入器，只镜像标准输出的 Logger 返回 nil
func (l *Logger) Writer() *xasync.Writer {
	return l.w
}

// Debug 记录 Debug 级别日志，来源取调用方位置
func (l *Logger) Debug(msg string) { l.logSkip(LevelDebug, msg, 1) }

// Info 记录 Info 级别日志
func (l *Logger) Info(msg string) { l.logSkip(LevelInfo, msg, 1) }

// Warn 记录 Warn 级别日志
func (l *Logger) Warn(msg string) { l.logSkip(LevelWarn, msg, 1) }

// Error 记录 Error 级别日志
func (l *Logger) Error(msg string) { l.logSkip(LevelError, msg, 1) }

// Log 以指定级别记录日志，level 须是单个级别
func (l *Logger) Log(level Level, msg string) { l.logSkip(level, msg, 1) }

// Logf 以指定级别记录格式化日志
func (l *Logger) Logf(level Level, format string, args ...any) {
	l.logSkip(level, fmt.Sprintf(format, args...), 1)
}

// logSkip skip 为相对 logSkip 调用方的额外栈帧数
func (l *Logger) logSkip(level Level, msg string, skip int) {
	if !l.Enabled(level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:])
	l.emit(l.opts.now(), level, msg, sourceOf(pcs[0]))
}

// emit 输出一条已决定级别的日志
func (l *Logger) emit(t time.Time, level Level, msg string, src *slog.Source) {
	toFile := l.w != nil && l.Levels().Has(level)
	toStd := l.showStd.Load()
	if !toFile && !toStd {
		return
	}

	line := Format(t, level, msg, src)
	if toFile {
		l.w.Enqueue(line)
	}
	if toStd {
		l.stdMu.Lock()
		_, _ = io.WriteString(l.opts.stdout, line+"\n")
		l.stdMu.Unlock()
	}
}

// sourceOf 把 PC 解析为来源位置，文件名只保留最后一段
func sourceOf(pc uintptr) *slog.Source {
	if pc == 0 {
		return nil
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" || frame.Function == "" {
		return nil
	}
	return &slog.Source{
		Function: frame.Function,
		File:     filepath.Base(frame.File),
		Line:     frame.Line,
	}
}

// Flush 等待当前已入队的日志写入文件
func (l *Logger) Flush(ctx context.Context) error {
	if l.w == nil {
		return nil
	}
	return l.w.Flush(ctx)
}

// Watch 监视配置文件，变更后热更新活动文件路径、级别和 show_std。
//
// 大小阈值、压缩和按天轮转在创建时确定，变更只记录一条提示。
// 重载失败时记录警告并保留当前配置。重复调用返回 [ErrAlreadyWatching]。
func (l *Logger) Watch(path string) error {
	if l.closed.Load() {
		return ErrClosed
	}
	cfg, err := xconf.New(path)
	if err != nil {
		return err
	}
	if _, err := decodeConfig(cfg); err != nil {
		return err
	}

	l.watchMu.Lock()
	defer l.watchMu.Unlock()
	if l.watcher != nil {
		return ErrAlreadyWatching
	}
	w, err := xconf.Watch(cfg, l.reload)
	if err != nil {
		return err
	}
	l.watcher = w
	w.Start()
	l.log.Info("watching config", slog.String("path", path))
	return nil
}

// reload 应用一次配置变更，与创建时或上一次生效的配置比较。
func (l *Logger) reload(src xconf.Config, err error) {
	if err != nil {
		l.log.Warn("config reload failed, keeping current settings", slog.Any("error", err))
		return
	}
	next, err := decodeConfig(src)
	if err != nil {
		l.log.Warn("config invalid, keeping current settings", slog.Any("error", err))
		return
	}

	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()
	prev := l.cfg

	if l.w != nil && next.Filename != prev.Filename {
		if err := l.w.SetPath(next.Filename); err != nil {
			l.log.Warn("switch log file failed", slog.String("path", next.Filename), slog.Any("error", err))
			next.Filename = prev.Filename
		}
	}
	if next.MaxFileSize != prev.MaxFileSize || next.Compression != prev.Compression ||
		next.RotateByDay != prev.RotateByDay {
		l.log.Info("rotation settings change takes effect after restart")
	}
	l.cfg = next
	l.apply(next)
	l.log.Info("config reloaded",
		slog.String("levels", next.Levels().String()),
		slog.Bool("show_std", next.ShowStd))
}

// Close 停止监视配置，写入剩余日志并关闭文件。重复调用返回第一次的结果。
func (l *Logger) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.watchMu.Lock()
		w := l.watcher
		l.watcher = nil
		l.watchMu.Unlock()

		var watchErr error
		if w != nil {
			watchErr = w.Stop()
		}
		if l.w != nil {
			l.closeErr = l.w.Shutdown(ctx)
		}
		if l.closeErr == nil {
			l.closeErr = watchErr
		}
	})
	return l.closeErr
}

// SetPath 切换活动日志文件，切换后立即做一次按天检查
func (l *Logger) SetPath(path string) error {
	if l.w == nil {
		return nil
	}
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()
	if err := l.w.SetPath(path); err != nil {
		return err
	}
	l.cfg.Filename = path
	return nil
}
