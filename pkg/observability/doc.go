// Package observability 提供日志落盘相关的子包。
//
// 子包列表：
//   - xrotate: 日志文件轮转、段命名和 gzip 压缩
//   - xasync: 异步批量写入器，按间隔把队列写入活动文件并触发轮转
//   - xfilelog: 按级别过滤的文件日志，含配置加载、热更新和 slog 适配
//
// 依赖方向：xfilelog -> xasync -> xrotate，下层不感知上层。
package observability
