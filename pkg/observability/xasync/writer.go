package xasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlogwriter/pkg/lifecycle/xrun"
	"github.com/omeyang/xlogwriter/pkg/observability/xrotate"
	"github.com/omeyang/xlogwriter/pkg/resilience/xretry"
)

// Writer 异步、轮转、压缩的日志写入器。
//
// 任意 goroutine 调用 Enqueue 入队预先格式化好的消息；唯一的后台写入循环
// 每隔 Interval 取走整个队列，一次性追加到活动文件，随后按大小检查是否轮转。
// 开启按天轮转时另有一个循环在每天 23:59:59 前后检查活动文件的修改日期。
type Writer struct {
	file    *xrotate.File
	queue   Queue
	opts    *options
	log     *slog.Logger
	metrics *metrics
	retryer *xretry.Retryer

	flushReq chan chan error
	done     chan struct{}

	// lifeMu 串行化 Start 与 Shutdown
	lifeMu  sync.Mutex
	started atomic.Bool
	group   *xrun.Group

	errMu sync.Mutex
	err   error

	// shutdownMu 串行化 Shutdown；只有走完全程的结果才会被记住
	shutdownMu   sync.Mutex
	shutdownDone bool
	shutdownErr  error
}

// New 创建写入器。
//
// 校验配置、规范化路径并创建日志目录；目录无法创建时返回包装 [ErrDirectory] 的错误。
// 返回的写入器需要调用 Start 才会开始写盘，在此之前入队的消息会被保留。
func New(path string, opts ...Option) (*Writer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.interval <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidInterval, o.interval)
	}
	if o.retryAttempts < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRetry, o.retryAttempts)
	}

	w := &Writer{
		opts:     o,
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	w.log = o.logger.With(slog.String("component", "xasync"))

	file, err := xrotate.NewFile(path,
		xrotate.WithMaxSizeMB(o.maxSizeMB),
		xrotate.WithCompression(o.compress),
		xrotate.WithClock(o.now),
		xrotate.WithOnError(w.onRotateError),
		xrotate.WithOnRotate(w.onRotate),
		xrotate.WithOnCompress(w.onCompress),
	)
	if err != nil {
		return nil, err
	}
	w.file = file

	w.metrics, err = newMetrics(o.meterProvider, file.Path())
	if err != nil {
		return nil, err
	}

	w.retryer = xretry.NewRetryer(
		xretry.WithRetryPolicy(xretry.NewFixedRetry(o.retryAttempts)),
		xretry.WithBackoffPolicy(xretry.NewExponentialBackoff(xretry.WithInitialDelay(o.retryDelay))),
		xretry.WithOnRetry(func(attempt int, err error) {
			w.metrics.addWriteError(context.Background())
			w.log.Warn("write attempt failed", slog.Int("attempt", attempt), slog.Any("error", err))
		}),
	)
	return w, nil
}

// Start 执行首次按天检查并启动后台循环，重复调用返回 [ErrAlreadyStarted]。
//
// ctx 被取消等同于调用 Shutdown 的前半段：写入循环做最后一次写入后退出。
func (w *Writer) Start(ctx context.Context) error {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	if w.started.Load() {
		return ErrAlreadyStarted
	}

	var first time.Duration
	if w.opts.rotateByDay {
		var err error
		if first, err = w.file.RotateByDay(); err != nil {
			w.log.Warn("initial day rotation incomplete", slog.Any("error", err))
		}
	}

	g, _ := xrun.NewGroup(ctx, xrun.WithName("xasync"), xrun.WithLogger(w.log))
	w.group = g
	w.started.Store(true)

	g.GoWithName("writer", w.loop)
	if w.opts.rotateByDay {
		g.GoWithName("day-check", xrun.Recurring(first, w.checkDay, nil))
	}

	go func() {
		defer close(w.done)
		if err := g.Wait(); err != nil && !errors.Is(err, ErrWriteFailed) {
			w.log.Error("writer stopped unexpectedly", slog.Any("error", err))
		}
	}()
	return nil
}

// Enqueue 入队一条预先格式化好的消息（不含结尾换行），从不阻塞、从不失败。
//
// 写入循环退出后入队的消息仍被保留，可通过 Pending 观察。
func (w *Writer) Enqueue(msg string) {
	w.queue.Enqueue(msg)
	w.metrics.addEnqueued(context.Background())
}

// Flush 要求写入循环立即写入当前队列并等待结果。
func (w *Writer) Flush(ctx context.Context) error {
	if !w.started.Load() {
		return ErrNotStarted
	}
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
	case <-w.done:
		return w.stoppedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetPath 切换活动文件路径；开启按天轮转时在切换的同时对新路径做一次按天检查。
//
// 指标的 file 属性随之改为新路径。新路径的目录无法创建时返回包装 [ErrDirectory]
// 的错误，原路径保持不变。按天轮转中的错误经 OnError 记录为告警，不影响返回值。
func (w *Writer) SetPath(path string) error {
	set := w.file.SetPath
	if w.opts.rotateByDay {
		set = w.file.SetPathAndRotateByDay
	}
	if err := set(path); err != nil {
		return err
	}
	current := w.file.Path()
	w.metrics.setFile(current)
	w.log.Info("active file changed", slog.String("path", current))
	return nil
}

// Path 返回活动文件路径
func (w *Writer) Path() string {
	return w.file.Path()
}

// Pending 返回尚未写入的消息数
func (w *Writer) Pending() int {
	return w.queue.Len()
}

// Err 返回导致写入循环终止的致命错误，没有时为 nil。
func (w *Writer) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

// Done 在后台循环全部退出后关闭
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Shutdown 停止后台循环，写入剩余消息，并关闭活动文件。
//
// 写入循环因致命错误提前退出时，Shutdown 会再尝试写入一次残留消息；
// 仍有消息未能写入时返回致命错误。ctx 只限制等待循环退出的时间。
// 等待超时返回 ctx.Err()，此时可以换一个 ctx 再次调用完成剩余步骤；
// 走完全程后重复调用返回同一结果。未 Start 时只尝试写入已入队的消息。
func (w *Writer) Shutdown(ctx context.Context) error {
	w.shutdownMu.Lock()
	defer w.shutdownMu.Unlock()
	if w.shutdownDone {
		return w.shutdownErr
	}

	finished, err := w.shutdown(ctx)
	if finished {
		w.shutdownDone = true
		w.shutdownErr = err
	}
	return err
}

// shutdown 返回的 finished 为 false 表示等待后台循环时 ctx 先结束
func (w *Writer) shutdown(ctx context.Context) (finished bool, err error) {
	w.lifeMu.Lock()
	group := w.group
	if !w.started.Load() {
		w.started.Store(true)
		close(w.done)
	}
	w.lifeMu.Unlock()

	if group != nil {
		group.Cancel(nil)
		select {
		case <-w.done:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	// 后台循环已全部退出，此处是唯一的写入方
	if w.queue.Len() > 0 {
		_ = w.writeOnce(context.Background())
	}
	closeErr := w.file.Close()

	if w.queue.Len() > 0 {
		if fatal := w.Err(); fatal != nil {
			return true, fatal
		}
		return true, fmt.Errorf("%w: %d messages left", ErrWriteFailed, w.queue.Len())
	}
	if closeErr != nil && !errors.Is(closeErr, xrotate.ErrClosed) {
		return true, closeErr
	}
	return true, nil
}

func (w *Writer) loop(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// 退出前最后写一次；失败由 Shutdown 再兜底一次
			return w.writeOnce(context.WithoutCancel(ctx))
		case <-ticker.C:
			if err := w.flush(ctx); err != nil && ctx.Err() == nil {
				return err
			}
		case ack := <-w.flushReq:
			err := w.flush(ctx)
			ack <- err
			if err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}

// flush 取走队列并写入，失败时按重试策略只重写尚未落盘的部分。
//
// 重试耗尽后未写入的消息放回队首并返回包装 [ErrWriteFailed] 的致命错误；
// ctx 取消打断重试时同样放回队首，返回 ctx.Err()。
func (w *Writer) flush(ctx context.Context) error {
	batch := w.queue.DrainAll()
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	remaining := batch
	err := w.retryer.Do(ctx, func(ctx context.Context) error {
		n, err := w.file.WriteBatch(remaining)
		w.metrics.addWritten(ctx, n)
		remaining = remaining[n:]
		if errors.Is(err, xrotate.ErrClosed) {
			return xretry.NewPermanentError(err)
		}
		return err
	})
	w.metrics.recordFlush(ctx, time.Since(start))
	if err == nil {
		return nil
	}

	w.queue.Requeue(remaining)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return w.fail(err)
}

// writeOnce 不重试地写入一次当前队列
func (w *Writer) writeOnce(ctx context.Context) error {
	batch := w.queue.DrainAll()
	if len(batch) == 0 {
		return nil
	}
	n, err := w.file.WriteBatch(batch)
	w.metrics.addWritten(ctx, n)
	if err == nil {
		return nil
	}
	w.metrics.addWriteError(ctx)
	w.queue.Requeue(batch[n:])
	return w.fail(err)
}

// fail 记录致命错误并通知 OnFatal，只有第一次生效
func (w *Writer) fail(cause error) error {
	err := fmt.Errorf("%w: %w", ErrWriteFailed, cause)

	w.errMu.Lock()
	first := w.err == nil
	if first {
		w.err = err
	}
	w.errMu.Unlock()

	if first {
		w.log.Error("writer loop terminated", slog.Any("error", err), slog.Int("pending", w.queue.Len()))
		if w.opts.onFatal != nil {
			w.opts.onFatal(err)
		}
	}
	return err
}

func (w *Writer) stoppedErr() error {
	if err := w.Err(); err != nil {
		return err
	}
	return ErrStopped
}

func (w *Writer) checkDay(context.Context) (time.Duration, error) {
	return w.file.RotateByDay()
}

func (w *Writer) onRotateError(err error) {
	w.log.Warn("rotation step failed", slog.Any("error", err))
}

func (w *Writer) onRotate(kind xrotate.Kind) {
	w.metrics.addRotation(context.Background(), kind)
	w.log.Debug("rotated", slog.String("kind", string(kind)))
}

func (w *Writer) onCompress(_ string, err error) {
	if err != nil {
		w.metrics.addCompressFailure(context.Background())
	}
}
