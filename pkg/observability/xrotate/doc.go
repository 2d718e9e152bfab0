// Package xrotate 提供日志文件的轮转与压缩。
//
// [Rotator] 接口定义了轮转器的核心行为（Write/Close/Rotate），所有实现并发安全。
//
// # 当前实现
//
//   - [NewFile]: 活动文件 + 按大小/按天轮转 + gzip 压缩，供 xasync 写入器使用
//   - [NewLumberjack]: 基于 lumberjack v2 的按大小轮转，用于诊断日志等简单场景
//
// # 文件布局（NewFile）
//
// 以活动文件 /var/log/app.log 为例：
//
//	app.log                  活动文件
//	app.log.1, app.log.2 ... 按大小轮转的段，.1 最新，可带 .gz 后缀
//	app-2026-10-14.log       按天轮转的活动文件，日期取其最后修改日期
//	2026-10-14-app.log.3.gz  按天轮转时一并退役的大小段
//
// 按大小轮转时先按数字感知的降序（app.log.12 排在 app.log.9 之前）
// 把已有段号加一，再把活动文件改名为 app.log.1。
//
// # 日界
//
// 按天轮转使用当天 23:59:59 作为日界（而非 00:00:00）。
// 日界已过时下一次检查的延迟为 now-日界（至少 100ms），进入次日后恢复为约 24h。
//
// # 压缩
//
// 是否已压缩按文件内容（gzip 魔数 1f 8b）判断，不看扩展名。
// 压缩失败不影响写入，未压缩的段仍然完整可读。
//
// # 错误
//
// 单个文件的改名或压缩失败不会中断整轮轮转：错误通过 WithOnError 回调逐个上报，
// 同时以 errors.Join 的形式返回给调用方。
package xrotate
