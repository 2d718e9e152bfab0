package xfilelog

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// TimeLayout 日志行的时间格式（ISO 8601，秒精度，不带时区）
const TimeLayout = "2006-01-02T15:04:05"

var lineEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Format 把一条日志格式化为单行文本，不含结尾换行：
//
//	2026-10-14T10:00:00 [Info] [main.go: 42 - main.run] started
//
// src 为 nil 或缺少文件名、函数名时省略来源部分：
//
//	2026-10-14T10:00:00 [Info] started
//
// msg 中的换行转义为字面量 \n，保证一条消息只占一行。
func Format(t time.Time, level Level, msg string, src *slog.Source) string {
	var b strings.Builder
	b.Grow(len(TimeLayout) + len(msg) + 64)

	b.WriteString(t.Format(TimeLayout))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if src != nil && src.File != "" && src.Function != "" {
		b.WriteByte('[')
		b.WriteString(src.File)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(src.Line))
		b.WriteString(" - ")
		b.WriteString(src.Function)
		b.WriteString("] ")
	}
	b.WriteString(lineEscaper.Replace(msg))
	return b.String()
}
