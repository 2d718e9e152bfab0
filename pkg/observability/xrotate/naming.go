package xrotate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CompressedExt 压缩段的扩展名
const CompressedExt = ".gz"

// DateLayout 按天轮转文件名中的日期格式
const DateLayout = "2006-01-02"

// Segment 一个按大小轮转的历史段
type Segment struct {
	// Path 段的完整路径
	Path string
	// Seq 段号，1 为最新
	Seq int
}

// SizeSegmentName 返回活动文件 active 第 n 号大小段的路径。
func SizeSegmentName(active string, n int, compressed bool) string {
	name := active + "." + strconv.Itoa(n)
	if compressed {
		name += CompressedExt
	}
	return name
}

// DayActiveName 返回按天轮转时活动文件的新路径：<dir>/<stem>-<date>.log。
//
// stem 为文件名去掉最后一个扩展名（app.log -> app）。
func DayActiveName(active string, date time.Time) string {
	base := filepath.Base(active)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// ".log" 这类只有扩展名的文件名
		stem = base
	}
	return filepath.Join(filepath.Dir(active), stem+"-"+date.Format(DateLayout)+".log")
}

// DaySegmentName 返回按天轮转时历史段的新路径：<dir>/<date>-<filename>。
func DaySegmentName(segment string, date time.Time) string {
	return filepath.Join(filepath.Dir(segment), date.Format(DateLayout)+"-"+filepath.Base(segment))
}

// ParseSequence 解析 candidate 相对于活动文件 active 的段号。
//
// candidate 的文件名必须形如 <active 文件名>.<数字>[.<任意后缀>]。
func ParseSequence(active, candidate string) (int, bool) {
	prefix := filepath.Base(active) + "."
	name := filepath.Base(candidate)
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	rest := name[len(prefix):]

	i := 0
	for i < len(rest) && isDigit(rest[i]) {
		i++
	}
	if i == 0 || (i < len(rest) && rest[i] != '.') {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CompareSegments 数字感知的文件名比较。
//
// 连续数字按数值比较，其余字符按字节比较，因此 "app.log.10" > "app.log.9"。
// 返回 -1、0、1。
func CompareSegments(a, b string) int {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			if c := compareNumeric(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric 比较两个十进制数字串，不受长度溢出影响。
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// ListSegments 列出活动文件的大小段，按段号降序（数字感知）排列。
func ListSegments(active string) ([]Segment, error) {
	matches, err := listMatching(active)
	if err != nil {
		return nil, err
	}

	segs := make([]Segment, 0, len(matches))
	for _, m := range matches {
		if n, ok := ParseSequence(active, m); ok {
			segs = append(segs, Segment{Path: m, Seq: n})
		}
	}
	slices.SortFunc(segs, func(x, y Segment) int {
		return CompareSegments(filepath.Base(y.Path), filepath.Base(x.Path))
	})
	return segs, nil
}

// listMatching 列出与活动文件同目录、文件名匹配 <name>.* 的普通文件。
func listMatching(active string) ([]string, error) {
	dir := filepath.Dir(active)
	prefix := filepath.Base(active) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("xrotate: read dir %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if len(name) > len(prefix) && strings.HasPrefix(name, prefix) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}

// FreeName 返回一个不存在的路径。
//
// path 不存在时原样返回，否则在最后一个扩展名之前插入 .1、.2 …，
// 直到找到空位（app-2026-10-14.log -> app-2026-10-14.1.log）。
func FreeName(path string) (string, error) {
	free, err := notExists(path)
	if err != nil || free {
		return path, err
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for k := 1; ; k++ {
		candidate := stem + "." + strconv.Itoa(k) + ext
		free, err := notExists(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
}

func notExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	return false, err
}
