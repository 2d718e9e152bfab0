package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xlogwriter/pkg/lifecycle/xrun"
	"github.com/omeyang/xlogwriter/pkg/observability/xasync"
	"github.com/omeyang/xlogwriter/pkg/observability/xfilelog"
	"github.com/omeyang/xlogwriter/pkg/observability/xrotate"
)

const (
	// shutdownTimeout 退出时等待写入循环结束的上限
	shutdownTimeout = 10 * time.Second

	// maxLineBytes 单行输入的上限，超出时 pipe 以读取错误退出
	maxLineBytes = 1 << 20
)

// 创建所有子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		createPipeCommand(),
		createCompressCommand(),
		createRotateCommand(),
	}
}

// createPipeCommand 创建 pipe 子命令
func createPipeCommand() *cli.Command {
	return &cli.Command{
		Name:  "pipe",
		Usage: "从标准输入读取日志行并写入文件，直到 EOF 或收到退出信号",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML/JSON 配置文件，字段同 xfilelog.Config",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "活动日志文件路径（覆盖配置文件）",
			},
			&cli.Int64Flag{
				Name:  "max-size",
				Usage: "按大小轮转阈值（MB，0 表示不按大小轮转）",
			},
			&cli.BoolFlag{
				Name:  "compress",
				Usage: "gzip 压缩轮转出的段",
			},
			&cli.BoolFlag{
				Name:  "rotate-by-day",
				Usage: "按天轮转",
			},
			&cli.BoolFlag{
				Name:  "stamp",
				Usage: "为每行加上时间戳和级别前缀",
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "--stamp 使用的级别",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "diag-file",
				Usage: "写入器自身诊断日志的文件（默认输出到 stderr）",
			},
		},
		Action: cmdPipe,
	}
}

// pipeConfig 加载配置文件并应用命令行覆盖
func pipeConfig(cmd *cli.Command) (xfilelog.Config, error) {
	cfg, err := xfilelog.LoadConfig(cmd.String("config"))
	if err != nil {
		return cfg, err
	}
	if cmd.IsSet("file") {
		cfg.Filename = cmd.String("file")
	}
	if cmd.IsSet("max-size") {
		cfg.MaxFileSize = cmd.Int64("max-size")
	}
	if cmd.IsSet("compress") {
		cfg.Compression = cmd.Bool("compress")
	}
	if cmd.IsSet("rotate-by-day") {
		cfg.RotateByDay = cmd.Bool("rotate-by-day")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, &usageError{msg: err.Error()}
	}
	return cfg, nil
}

// diagLogger 返回写入器的诊断 logger；指定 --diag-file 时写入 lumberjack 轮转文件
func diagLogger(path string, errOut io.Writer) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(errOut, nil)), io.NopCloser(nil), nil
	}
	rot, err := xrotate.NewLumberjack(path, xrotate.WithLocalTime(true))
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(rot, &slog.HandlerOptions{Level: slog.LevelDebug})), rot, nil
}

func cmdPipe(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return usagef("pipe 不接受位置参数: %v", cmd.Args().Slice())
	}
	cfg, err := pipeConfig(cmd)
	if err != nil {
		return err
	}
	level, err := xfilelog.ParseLevel(cmd.String("level"))
	if err != nil {
		return usagef("%v", err)
	}

	diag, closer, err := diagLogger(cmd.String("diag-file"), cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer closer.Close()

	w, err := xasync.New(cfg.Filename,
		xasync.WithMaxSizeMB(cfg.MaxFileSize),
		xasync.WithCompress(cfg.Compression),
		xasync.WithRotateByDay(cfg.RotateByDay),
		xasync.WithLogger(diag),
	)
	if err != nil {
		return err
	}
	// 写入器的生命周期由下面的 Shutdown 管理，不随信号提前停止
	if err := w.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	var stamp func(string) string
	if cmd.Bool("stamp") {
		stamp = func(line string) string {
			return xfilelog.Format(time.Now(), level, line, nil)
		}
	}

	runErr := xrun.RunWithOptions(ctx,
		[]xrun.Option{xrun.WithName("pipe"), xrun.WithLogger(diag)},
		func(ctx context.Context) error {
			return pump(ctx, cmd.Root().Reader, w, stamp)
		},
	)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	shutdownErr := w.Shutdown(shutdownCtx)

	if errors.Is(runErr, xrun.ErrSignal) {
		runErr = nil
	}
	return errors.Join(runErr, shutdownErr)
}

// pump 把 in 的每一行入队，EOF 时返回 nil，ctx 取消时返回 nil。
//
// 读取在单独的 goroutine 中进行：阻塞的 Read 无法被 ctx 打断。
func pump(ctx context.Context, in io.Reader, w *xasync.Writer, stamp func(string) string) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case line := <-lines:
			if stamp != nil {
				line = stamp(line)
			}
			w.Enqueue(line)
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// createCompressCommand 创建 compress 子命令
func createCompressCommand() *cli.Command {
	return &cli.Command{
		Name:      "compress",
		Usage:     "原地 gzip 压缩文件（生成 <file>.gz 并删除原文件），已压缩的文件跳过",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "level",
				Usage: "gzip 压缩级别（-2~9）",
				Value: xrotate.DefaultCompressionLevel,
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "并行压缩的文件数",
				Value:   runtime.GOMAXPROCS(0),
			},
		},
		Action: cmdCompress,
	}
}

func cmdCompress(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return usagef("compress 需要至少一个文件")
	}
	jobs := int(cmd.Int("jobs"))
	if jobs < 1 {
		return usagef("--jobs 必须 >= 1，当前 %d", jobs)
	}
	c, err := xrotate.NewCompressor(int(cmd.Int("level")))
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	// 每个文件的结果按输入顺序输出
	results := make([]string, len(files))
	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				errs[i] = gctx.Err()
				return nil
			}
			dst, err := c.Compress(f)
			switch {
			case err != nil:
				errs[i] = err
			case dst == f:
				results[i] = fmt.Sprintf("skip %s (already compressed)", f)
			default:
				results[i] = fmt.Sprintf("%s -> %s", f, dst)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.Root().Writer
	for _, r := range results {
		if r != "" {
			fmt.Fprintln(out, r)
		}
	}
	return errors.Join(errs...)
}

// createRotateCommand 创建 rotate 子命令
func createRotateCommand() *cli.Command {
	return &cli.Command{
		Name:  "rotate",
		Usage: "立即执行一次轮转：默认按大小重新编号，--day 时按天检查",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "活动日志文件路径",
			},
			&cli.BoolFlag{
				Name:  "day",
				Usage: "执行按天轮转（活动文件最后修改日期不是今天时才轮转）",
			},
			&cli.BoolFlag{
				Name:  "compress",
				Usage: "gzip 压缩轮转出的段",
			},
		},
		Action: cmdRotate,
	}
}

func cmdRotate(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	if path == "" {
		return usagef("rotate 需要 --file")
	}
	f, err := xrotate.NewFile(path, xrotate.WithCompression(cmd.Bool("compress")))
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.Root().Writer
	if cmd.Bool("day") {
		next, err := f.RotateByDay()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "day check done, next check in %s\n", next.Round(time.Second))
		return nil
	}
	if err := f.Rotate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "rotated %s\n", f.Path())
	return nil
}
