package xrotate

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noonDaysAgo 返回 n 天前的 12:00（本地时区），避开夏令时切换的边缘
func noonDaysAgo(n int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day()-n, 12, 0, 0, 0, time.Local)
}

func writeWithMtime(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestNextDayDelay(t *testing.T) {
	day := func(h, m, s, ns int) time.Time {
		return time.Date(2026, 10, 14, h, m, s, ns, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{name: "上午十点", now: day(10, 0, 0, 0), want: 13*time.Hour + 59*time.Minute + 59*time.Second},
		{name: "零点整", now: day(0, 0, 0, 0), want: 23*time.Hour + 59*time.Minute + 59*time.Second},
		{name: "日界已过半秒", now: day(23, 59, 59, 500_000_000), want: 500 * time.Millisecond},
		{name: "恰好位于日界", now: day(23, 59, 59, 0), want: minDayDelay},
		{name: "日界已过不足下限", now: day(23, 59, 59, 10_000_000), want: minDayDelay},
		{name: "日界前一秒", now: day(23, 59, 58, 0), want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDayDelay(tt.now))
		})
	}
}

func TestSameDate(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	a := time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(a, time.Date(2026, 10, 14, 1, 0, 0, 0, time.UTC)))
	// UTC 20:00 在东八区已是次日 04:00
	assert.True(t, SameDate(a, time.Date(2026, 10, 15, 9, 0, 0, 0, shanghai)))
	assert.False(t, SameDate(a, time.Date(2026, 10, 14, 9, 0, 0, 0, shanghai)))
}

func TestFile_RotateByDay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	yesterday := noonDaysAgo(1)
	twoDaysAgo := noonDaysAgo(2)

	writeWithMtime(t, path, "active", yesterday)
	writeWithMtime(t, path+".1", "one", yesterday)
	writeWithMtime(t, path+".2", "two", twoDaysAgo)

	var kinds []Kind
	f, err := NewFile(path, WithOnRotate(func(k Kind) { kinds = append(kinds, k) }))
	require.NoError(t, err)

	delay, err := f.RotateByDay()
	require.NoError(t, err)
	assert.Positive(t, delay)
	assert.Equal(t, delay, f.NextDayDelay())
	assert.Equal(t, []Kind{KindDay}, kinds)

	y := yesterday.Format(DateLayout)
	assert.NoFileExists(t, path)
	assert.Equal(t, "active", readFile(t, filepath.Join(dir, "app-"+y+".log")))
	assert.Equal(t, "one", readFile(t, filepath.Join(dir, y+"-app.log.1")))
	assert.Equal(t, "two", readFile(t, filepath.Join(dir, twoDaysAgo.Format(DateLayout)+"-app.log.2")))
}

func TestFile_RotateByDayIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeWithMtime(t, path, "old", noonDaysAgo(1))

	var rotations int
	f, err := NewFile(path, WithOnRotate(func(Kind) { rotations++ }))
	require.NoError(t, err)

	_, err = f.RotateByDay()
	require.NoError(t, err)
	require.Equal(t, 1, rotations)

	// 今天写入的新活动文件不再轮转
	_, err = f.WriteBatch([]string{"today"})
	require.NoError(t, err)
	_, err = f.RotateByDay()
	require.NoError(t, err)
	_, err = f.RotateByDay()
	require.NoError(t, err)

	assert.Equal(t, 1, rotations)
	assert.Equal(t, "today\n", readFile(t, path))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFile_RotateByDayWithoutActiveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeWithMtime(t, path+".1", "one", noonDaysAgo(3))

	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.Local)
	f, err := NewFile(path, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	delay, err := f.RotateByDay()
	require.NoError(t, err)
	assert.Equal(t, 13*time.Hour+59*time.Minute+59*time.Second, delay)
	assert.Equal(t, "one", readFile(t, path+".1"), "没有活动文件时不退役大小段")
}

func TestFile_RotateByDayNameCollision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	yesterday := noonDaysAgo(1)
	y := yesterday.Format(DateLayout)

	taken := filepath.Join(dir, "app-"+y+".log")
	writeWithMtime(t, taken, "earlier", yesterday)
	writeWithMtime(t, path, "later", yesterday)

	f, err := NewFile(path)
	require.NoError(t, err)
	_, err = f.RotateByDay()
	require.NoError(t, err)

	assert.Equal(t, "earlier", readFile(t, taken))
	assert.Equal(t, "later", readFile(t, filepath.Join(dir, "app-"+y+".1.log")))
}

func TestFile_RotateByDayWithCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	yesterday := noonDaysAgo(1)
	y := yesterday.Format(DateLayout)

	writeWithMtime(t, path, "active", yesterday)
	writeWithMtime(t, path+".1", "one", yesterday)

	// 已压缩的段只改名不重复压缩
	c, err := NewCompressor(DefaultCompressionLevel)
	require.NoError(t, err)
	writeWithMtime(t, path+".2", "two", yesterday)
	_, err = c.Compress(path + ".2")
	require.NoError(t, err)

	var compressed []string
	f, err := NewFile(path, WithCompression(true), WithOnCompress(func(p string, err error) {
		assert.NoError(t, err)
		compressed = append(compressed, filepath.Base(p))
	}))
	require.NoError(t, err)

	_, err = f.RotateByDay()
	require.NoError(t, err)

	assert.Equal(t, "active", readGzip(t, filepath.Join(dir, "app-"+y+".log.gz")))
	assert.Equal(t, "one", readGzip(t, filepath.Join(dir, y+"-app.log.1.gz")))
	assert.Equal(t, "two", readGzip(t, filepath.Join(dir, y+"-app.log.2.gz")))
	assert.ElementsMatch(t, []string{"app-" + y + ".log", y + "-app.log.1"}, compressed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFile_RotateByDayUsesInjectedClock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeWithMtime(t, path, "today", time.Now())

	tomorrow := time.Now().AddDate(0, 0, 1)
	f, err := NewFile(path, WithClock(func() time.Time { return tomorrow }))
	require.NoError(t, err)

	_, err = f.RotateByDay()
	require.NoError(t, err)
	assert.NoFileExists(t, path)
}

func TestFile_SetPathAndRotateByDay(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "a.log"))
	require.NoError(t, err)

	next := filepath.Join(dir, "sub", "b.log")
	yesterday := noonDaysAgo(1)
	require.NoError(t, os.MkdirAll(filepath.Dir(next), 0o750))
	writeWithMtime(t, next, "stale\n", yesterday)

	// 切换期间不断有批次写入，旧内容仍必须整份轮转出去
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_, err := f.WriteBatch([]string{"fresh"})
				assert.NoError(t, err)
			}
		}
	}()

	require.NoError(t, f.SetPathAndRotateByDay(next))
	close(stop)
	wg.Wait()

	assert.Equal(t, next, f.Path())
	assert.Positive(t, f.NextDayDelay())
	assert.Equal(t, "stale\n", readFile(t, filepath.Join(dir, "sub", "b-"+yesterday.Format(DateLayout)+".log")))
	assert.NotContains(t, readFile(t, next), "stale")

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	assert.ErrorIs(t, f.SetPathAndRotateByDay(filepath.Join(blocker, "c.log")), ErrDirectory)
	assert.Equal(t, next, f.Path())
}
