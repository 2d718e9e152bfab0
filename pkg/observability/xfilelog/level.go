package xfilelog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别。每个级别占一个比特位，多个级别按位或组成掩码。
type Level uint8

// 级别常量
const (
	LevelInfo Level = 1 << iota
	LevelDebug
	LevelError
	LevelWarn

	// LevelAll 全部级别
	LevelAll = LevelInfo | LevelDebug | LevelError | LevelWarn
)

// String 返回写进日志行的级别名（Debug/Info/Warn/Error）。
// 组合掩码返回各级别名以 "|" 连接。
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	case 0:
		return "None"
	}
	var names []string
	for _, one := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if l&one != 0 {
			names = append(names, one.String())
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Level(%d)", uint8(l))
	}
	return strings.Join(names, "|")
}

// Has 报告掩码 l 是否包含 level
func (l Level) Has(level Level) bool {
	return l&level != 0
}

// ParseLevel 解析单个级别名。
// 支持 debug/info/warn/warning/error（大小写不敏感），输入会先 TrimSpace。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "critical", "fatal":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// ParseLevels 把级别名列表解析为掩码。空列表表示全部级别。
func ParseLevels(names []string) (Level, error) {
	var mask Level
	for _, name := range names {
		l, err := ParseLevel(name)
		if err != nil {
			return 0, err
		}
		mask |= l
	}
	if mask == 0 {
		return LevelAll, nil
	}
	return mask, nil
}

// FromSlog 把 slog 级别映射到最接近的 Level
func FromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}
