// Package xfilelog 在 xasync 写入器之上提供按级别过滤的文件日志。
//
// 每条日志格式化为一行：
//
//	2026-10-14T10:00:00 [Info] [main.go: 42 - main.run] started
//
// 来源未知时省略方括号中的来源部分。级别掩码决定哪些级别写入文件；
// show_std 打开时每条日志同时打印到标准输出。
//
// # 配置
//
// 配置可从 YAML 或 JSON 文件加载，文件中没有出现的键使用默认值：
//
//	filename: /tmp/xfilelog.log   # 默认位于系统临时目录
//	max_file_size: 2              # MB，0 表示不按大小轮转
//	compression: true
//	rotate_by_day: true
//	level: [debug, info, warn, error]
//	show_std: true
//
// [Logger.Watch] 监视配置文件，变更后热更新 filename、level 和 show_std。
//
// # 全局 Logger
//
//	if _, err := xfilelog.Init(ctx, "/etc/app/log.yaml"); err != nil { ... }
//	defer xfilelog.Shutdown(context.Background())
//	xfilelog.InstallSlog()        // slog 和 log 包的输出都进入日志文件
//	slog.Info("started", "port", 8080)
//
// Init 在配置不可用时退回默认配置；未调用 Init 时 [Default] 按默认配置惰性创建。
package xfilelog
