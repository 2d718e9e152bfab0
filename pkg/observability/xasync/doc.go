// Package xasync 提供异步、轮转、压缩的日志写入器。
//
// # 模型
//
// 任意 goroutine 调用 [Writer.Enqueue] 入队预先格式化好的消息，只在追加时短暂持锁。
// 唯一的写入循环每隔 Interval（默认 5ms）取走整个队列，一次性追加到活动文件，
// 之后由 xrotate 同步检查大小阈值。开启按天轮转时另一个循环在日界附近检查
// 活动文件的修改日期。写入与两种轮转由 xrotate.File 内部的同一把锁串行化，
// 一条消息要么完整落在轮转前的文件里，要么完整落在轮转后的文件里。
//
// # 生命周期
//
//	w, err := xasync.New("/var/log/app/app.log",
//	    xasync.WithMaxSizeMB(100),
//	    xasync.WithCompress(true),
//	    xasync.WithRotateByDay(true),
//	)
//	if err != nil { ... }           // ErrDirectory 等
//	if err := w.Start(ctx); err != nil { ... }
//	w.Enqueue("2026-10-14T10:00:00 [Info] started")
//	defer w.Shutdown(context.Background())
//
// # 写入失败
//
// 一批写入失败时按指数退避重试（默认 3 次），每次只重写尚未落盘的消息。
// 重试耗尽后未写入的消息放回队首，[Writer.Err] 返回包装 [ErrWriteFailed] 的错误，
// OnFatal 回调被调用一次，写入循环退出。此后 Enqueue 仍然成功，消息留在队列中；
// Shutdown 会再尝试写入一次，仍失败时返回该错误。
//
// 轮转中单个文件的改名、压缩失败不是致命错误：记录一条警告后继续。
//
// # 指标
//
// 通过 OpenTelemetry 记录入队数、写入数、轮转次数（kind=size/day）、
// 压缩失败数、写入失败次数以及单批写入耗时。
package xasync
