// Package xrun 提供基于 errgroup + context 的后台循环生命周期管理。
//
// # 概述
//
//   - [Group]: 多个循环并发运行，任一出错或被取消时协调关闭
//   - [Run] / [RunWithOptions]: 在 Group 之上监听 SIGHUP/SIGINT/SIGTERM/SIGQUIT，
//     循环全部正常返回后随之结束
//   - [Recurring]: 每次执行后由回调决定下一次等待多久的循环
//
// xasync 写入器用一个 Group 承载批量写循环和按天检查循环；
// 命令行工具用 Run 把 stdin 管道和信号处理绑在一起。
//
// # 错误处理
//
// Wait 返回第一个非 nil 错误，规则如下：
//   - 普通错误原样返回
//   - context.Canceled 且 Group 被取消：返回 Cancel 设置的原因，没有则返回 nil
//   - context.Canceled 但 Group 未被取消：说明来自循环内部，原样返回
//
// 信号退出：
//
//	err := xrun.Run(ctx, pipeLoop)
//	var sigErr *xrun.SignalError
//	if errors.As(err, &sigErr) {
//	    log.Printf("received signal: %v", sigErr.Signal)
//	}
package xrun
