package xfilelog_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omeyang/xlogwriter/pkg/observability/xfilelog"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 10, 14, 9, 5, 7, 123_000_000, time.Local)
	src := &slog.Source{File: "main.go", Line: 42, Function: "main.run"}

	tests := []struct {
		name  string
		level xfilelog.Level
		msg   string
		src   *slog.Source
		want  string
	}{
		{
			name:  "带来源",
			level: xfilelog.LevelInfo,
			msg:   "started",
			src:   src,
			want:  "2026-10-14T09:05:07 [Info] [main.go: 42 - main.run] started",
		},
		{
			name:  "无来源",
			level: xfilelog.LevelWarn,
			msg:   "disk almost full",
			want:  "2026-10-14T09:05:07 [Warn] disk almost full",
		},
		{
			name:  "来源缺少函数名",
			level: xfilelog.LevelError,
			msg:   "boom",
			src:   &slog.Source{File: "main.go", Line: 1},
			want:  "2026-10-14T09:05:07 [Error] boom",
		},
		{
			name:  "换行被转义",
			level: xfilelog.LevelDebug,
			msg:   "line1\nline2\r\n",
			want:  `2026-10-14T09:05:07 [Debug] line1\nline2\r\n`,
		},
		{
			name:  "空消息",
			level: xfilelog.LevelInfo,
			want:  "2026-10-14T09:05:07 [Info] ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xfilelog.Format(ts, tt.level, tt.msg, tt.src))
		})
	}
}
