// Package xfile 提供日志文件落盘所需的文件系统工具。
//
// # 路径净化
//
// [SanitizePath] 对日志文件路径做格式检查：拒绝空路径、空字节、
// 目录形式路径（尾随 "/" 或 "\"）以及 ".." 路径段。
// ".." 的检测按路径段精确匹配，"app..2024.log" 这类文件名不会被误判。
//
// # 目录创建
//
// [EnsureDir] 在文件首次写入前确保父目录存在，已存在时不做任何修改。
// 目录创建失败对日志写入器来说是致命错误，由调用方决定如何上报。
//
// # 文件状态
//
// [Lookup] 把"文件不存在"与其他 stat 错误区分开：
//
//	info, ok, err := xfile.Lookup("/var/log/app.log")
//	if err != nil {
//	    // 权限、I/O 等真实错误
//	}
//	if !ok {
//	    // 文件尚未创建（写入器延迟创建活动文件）
//	}
package xfile
