package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Group 基于 errgroup + context 管理一组后台循环的并发运行和协调关闭。
//
// 任一循环返回错误或 context 被取消时，其余循环都会收到取消信号。
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithName("xasync"))
//	g.GoWithName("flush", flushLoop)
//	g.GoWithName("day-check", xrun.Recurring(first, check))
//	err := g.Wait()
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回它和派生出的 context。
//
// nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动一个 goroutine 执行 fn。fn 返回非 nil 错误时取消整个 Group。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，额外在日志中记录循环的启动和退出。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		log := g.opts.logger.With(
			slog.String("group", g.opts.name),
			slog.String("loop", name),
		)
		log.Debug("loop starting")

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("loop exited with error", slog.Any("error", err))
		} else {
			log.Debug("loop stopped")
		}
		return err
	})
}

// Wait 等待所有 goroutine 退出，返回第一个非 nil 错误。
//
// 错误为 context.Canceled 且 Group 本身被取消时，返回 Cancel 设置的原因
// （如 [SignalError]）；没有显式原因时返回 nil。来自循环内部的
// context.Canceled（Group 未被取消）原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug("all loops stopped", slog.String("group", g.opts.name))

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() == nil {
			return err
		}
		return g.explicitCause()
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.explicitCause()
	}
	return err
}

func (g *Group) explicitCause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 取消所有 goroutine，cause 会作为 Wait 的返回值。
//
// cause 不要包装 context.Canceled，否则会被 Wait 当作普通取消过滤掉。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context
func (g *Group) Context() context.Context {
	return g.ctx
}

// Run 监听系统信号并运行 loops，直到全部退出。
//
// 收到 SIGHUP/SIGINT/SIGTERM/SIGQUIT 时取消 ctx，返回 *[SignalError]。
// loops 全部返回 nil 时信号监听随之结束，Run 返回 nil。
func Run(ctx context.Context, loops ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, loops...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, opts []Option, loops ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	// finished 在 loops 全部退出后关闭；没有 loop 时只等信号
	finished := make(chan struct{})
	var remaining atomic.Int64
	remaining.Store(int64(len(loops)))

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		// signal.Notify 不带参数会订阅全部信号
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			return g.waitSignal(ctx, signals, finished)
		})
	}

	for _, fn := range loops {
		g.Go(func(ctx context.Context) error {
			defer func() {
				if remaining.Add(-1) == 0 {
					close(finished)
				}
			}()
			if fn == nil {
				return ErrNilFunc
			}
			return fn(ctx)
		})
	}
	return g.Wait()
}

func (g *Group) waitSignal(ctx context.Context, signals []os.Signal, finished <-chan struct{}) error {
	testc := testSigChan(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	var sig os.Signal
	select {
	case sig = <-testc:
	case sig = <-sigCh:
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	g.opts.logger.Info("received signal",
		slog.String("group", g.opts.name),
		slog.String("signal", sig.String()),
	)
	g.cancel(&SignalError{Signal: sig})
	return nil
}
