// xlogwriter 把标准输入逐行写入轮转、压缩的日志文件，并提供离线的压缩和轮转工具。
//
// 用法:
//
//	xlogwriter [全局选项] [命令] [命令参数]
//
// 命令:
//
//	pipe           从标准输入读取日志行并写入文件（默认命令）
//	compress       原地 gzip 压缩文件，已压缩的文件跳过
//	rotate         立即执行一次按大小（或按天）轮转
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误（缺少必需参数、未知命令或 flag 等）
//
// 示例:
//
//	myapp 2>&1 | xlogwriter -f /var/log/myapp/app.log --max-size 100
//	myapp | xlogwriter -c /etc/myapp/log.yaml --stamp --diag-file /var/log/myapp/xlogwriter.log
//	xlogwriter compress /var/log/myapp/app.log.3
//	xlogwriter rotate --file /var/log/myapp/app.log --day
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// 退出码
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// usageError 参数错误，映射为退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// createApp 创建 CLI 应用
func createApp(in io.Reader, out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:           "xlogwriter",
		Usage:          "异步、轮转、压缩的日志写入工具",
		Version:        fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Reader:         in,
		Writer:         out,
		ErrWriter:      errOut,
		Commands:       createCommands(),
		DefaultCommand: "pipe",
		// 禁止 urfave/cli 直接调用 os.Exit，退出码统一由 run 映射
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(errOut, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	app := createApp(in, out, errOut)

	err := app.Run(ctx, args)
	if err == nil {
		return exitOK
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(errOut, "参数错误: %v\n", usageErr)
		return exitUsage
	}
	if isCLIUsageError(err) {
		// flag 解析器已向 stderr 输出错误详情
		return exitUsage
	}
	fmt.Fprintf(errOut, "错误: %v\n", err)
	return exitFailure
}

// isCLIUsageError 识别 urfave/cli 自身产生的参数错误
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, s := range []string{
		"flag provided but not defined",
		"invalid value",
		"Required flag",
		"No help topic for",
		"flag needs an argument",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
