package xrun

import (
	"context"
	"os"
	"syscall"
	"time"
)

// DefaultSignals 返回默认监听的系统信号：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
// 每次调用返回新切片。
func DefaultSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}

// testSigChanKey 测试中通过 context 注入信号通道，避免发送真实信号
type testSigChanKey struct{}

func testSigChan(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	return c
}

func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}

// Recurring 返回一个按自适应间隔重复执行 fn 的循环。
//
// 第一次在 first 之后执行，此后每次的等待时间取 fn 的返回值，
// 因此 fn 可以按自身状态决定下一次何时到来（例如"到今天日界还有多久"）。
// fn 返回的错误不会终止循环，交给 onErr 处理（可为 nil）；
// 返回的间隔不为正数时沿用上一次的间隔。ctx 取消后返回 ctx.Err()。
//
//	g.Go(xrun.Recurring(0, func(ctx context.Context) (time.Duration, error) {
//	    return file.RotateByDay()
//	}, nil))
func Recurring(first time.Duration, fn func(ctx context.Context) (time.Duration, error), onErr func(error)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if first < 0 {
			return ErrInvalidDelay
		}
		if fn == nil {
			return ErrNilFunc
		}

		timer := time.NewTimer(first)
		defer timer.Stop()

		last := first
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}

			next, err := fn(ctx)
			if err != nil && onErr != nil {
				onErr(err)
			}
			if next > 0 {
				last = next
			}
			if last <= 0 {
				return ErrInvalidInterval
			}
			timer.Reset(last)
		}
	}
}
