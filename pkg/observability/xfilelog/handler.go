package xfilelog

import (
	"context"
	"log/slog"
	"strings"
)

// Handler 返回以 l 为后端的 slog.Handler。
//
// 记录的属性以 key=value 形式追加在消息之后，分组用 "." 连接为键前缀；
// 来源位置取自 Record.PC。
func (l *Logger) Handler() slog.Handler {
	return &handler{l: l}
}

// Slog 返回以 l 为后端的 *slog.Logger
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.Handler())
}

type handler struct {
	l      *Logger
	prefix string // WithAttrs 预先格式化好的属性
	group  string // 当前分组前缀，以 "." 结尾
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.l.Enabled(FromSlog(level))
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})
	h.l.emit(r.Time, FromSlog(r.Level), b.String(), sourceOf(r.PC))
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&b, h.group, a)
	}
	return &handler{l: h.l, prefix: b.String(), group: h.group}
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &handler{l: h.l, prefix: h.prefix, group: h.group + name + "."}
}

// appendAttr 以 " key=value" 追加一个属性，分组属性递归展开
func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		g := group
		if a.Key != "" {
			g += a.Key + "."
		}
		for _, ga := range attrs {
			appendAttr(b, g, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(group)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}
