// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 文件路径检查与目录创建，防御路径遍历和空字节注入
package util
