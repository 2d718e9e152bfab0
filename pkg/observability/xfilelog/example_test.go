package xfilelog_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/omeyang/xlogwriter/pkg/observability/xfilelog"
)

func ExampleFormat() {
	t := time.Date(2026, 10, 14, 10, 0, 0, 0, time.Local)
	src := &slog.Source{File: "main.go", Line: 42, Function: "main.run"}
	fmt.Println(xfilelog.Format(t, xfilelog.LevelInfo, "started", src))
	fmt.Println(xfilelog.Format(t, xfilelog.LevelError, "two\nlines", nil))
	// Output:
	// 2026-10-14T10:00:00 [Info] [main.go: 42 - main.run] started
	// 2026-10-14T10:00:00 [Error] two\nlines
}

func ExampleNew() {
	dir, _ := os.MkdirTemp("", "xfilelog-example")
	defer os.RemoveAll(dir)

	cfg := xfilelog.DefaultConfig()
	cfg.Filename = filepath.Join(dir, "app.log")
	cfg.Level = []string{"info", "warn", "error"}
	cfg.ShowStd = false

	l, err := xfilelog.New(context.Background(), cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	l.Debug("not written")
	l.Slog().Info("ready", "port", 8080)
	_ = l.Close(context.Background())

	data, _ := os.ReadFile(cfg.Filename)
	fmt.Println(len(data) > 0)
	// Output:
	// true
}
