// Package xretry 提供重试策略、退避策略和基于 [avast/retry-go/v5] 的执行器。
//
// xasync 用它重试批量写入：每次尝试只写入上一次尚未落盘的消息，
// 重试预算耗尽后由调用方决定如何处置剩余数据。
//
//	r := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//	    xretry.WithBackoffPolicy(xretry.NewExponentialBackoff()),
//	)
//	err := r.Do(ctx, func(ctx context.Context) error {
//	    return writeRemaining()
//	})
//
// 用 [NewPermanentError] 或 retry-go 的 [Unrecoverable] 包装的错误不会被重试。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
