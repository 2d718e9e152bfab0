package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xlogwriter/pkg/observability/xrotate"
)

// runCLI 以给定标准输入运行一次命令，返回退出码和两路输出
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), append([]string{"xlogwriter"}, args...),
		strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPipe(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	code, _, errOut := runCLI(t, "first\nsecond\nthird",
		"pipe", "-f", logPath, "--compress=false", "--rotate-by-day=false")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "first\nsecond\nthird\n", readFile(t, logPath))
}

func TestPipe_DefaultCommand(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	code, _, errOut := runCLI(t, "hello\n")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "hello\n", readFile(t, filepath.Join(os.TempDir(), "xfilelog.log")))
}

func TestPipe_Stamp(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	code, _, errOut := runCLI(t, "boom\n",
		"pipe", "-f", logPath, "--rotate-by-day=false", "--stamp", "--level", "warning")
	require.Equal(t, exitOK, code, errOut)

	line := strings.TrimSuffix(readFile(t, logPath), "\n")
	assert.True(t, strings.HasSuffix(line, " [Warn] boom"), line)
	_, err := time.ParseInLocation("2006-01-02T15:04:05", strings.Fields(line)[0], time.Local)
	assert.NoError(t, err)
}

func TestPipe_ConfigFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	fromConfig := filepath.Join(dir, "config.log")
	cfgPath := filepath.Join(dir, "log.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("filename: "+fromConfig+"\nrotate_by_day: false\ncompression: false\n"), 0o600))

	code, _, errOut := runCLI(t, "a\n", "pipe", "-c", cfgPath)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "a\n", readFile(t, fromConfig))

	override := filepath.Join(dir, "override.log")
	code, _, errOut = runCLI(t, "b\n", "pipe", "-c", cfgPath, "-f", override)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "b\n", readFile(t, override))
}

func TestPipe_SizeRotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	line := strings.Repeat("x", 999)
	input := strings.Repeat(line+"\n", 1500)

	code, _, errOut := runCLI(t, input,
		"pipe", "-f", logPath, "--max-size", "1", "--compress=false", "--rotate-by-day=false")
	require.Equal(t, exitOK, code, errOut)

	_, err := os.Stat(xrotate.SizeSegmentName(logPath, 1, false))
	assert.NoError(t, err, "超过 1MB 后应轮转出 .1 段")
}

func TestPipe_DiagFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	diagPath := filepath.Join(dir, "diag", "xlogwriter.log")

	code, _, errOut := runCLI(t, "x\n",
		"pipe", "-f", logPath, "--rotate-by-day=false", "--diag-file", diagPath)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, readFile(t, diagPath), "loop starting")
}

func TestCompress(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(plain, []byte("hello\n"), 0o600))

	code, out, errOut := runCLI(t, "", "compress", plain)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, plain+" -> "+plain+".gz")
	_, err := os.Stat(plain)
	assert.True(t, os.IsNotExist(err))

	code, out, errOut = runCLI(t, "", "compress", plain+".gz")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "skip "+plain+".gz")
}

func TestCompress_Parallel(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := range 8 {
		f := filepath.Join(dir, "app.log."+strconv.Itoa(i+1))
		require.NoError(t, os.WriteFile(f, []byte(strings.Repeat("line\n", 100)), 0o600))
		files = append(files, f)
	}

	code, out, errOut := runCLI(t, "", append([]string{"compress", "-j", "3"}, files...)...)
	require.Equal(t, exitOK, code, errOut)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, len(files))
	for i, f := range files {
		assert.Equal(t, f+" -> "+f+".gz", lines[i], "按输入顺序输出")
		ok, err := xrotate.IsCompressed(f + ".gz")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestCompress_MissingFile(t *testing.T) {
	code, _, errOut := runCLI(t, "", "compress", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "错误")
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(active, []byte("a\n"), 0o600))
	require.NoError(t, os.WriteFile(active+".1", []byte("old\n"), 0o600))

	code, out, errOut := runCLI(t, "", "rotate", "--file", active)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "rotated")
	assert.Equal(t, "a\n", readFile(t, active+".1"))
	assert.Equal(t, "old\n", readFile(t, active+".2"))
}

func TestRotate_Day(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(active, []byte("a\n"), 0o600))
	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, os.Chtimes(active, yesterday, yesterday))

	code, out, errOut := runCLI(t, "", "rotate", "-f", active, "--day")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "next check in")
	assert.Equal(t, "a\n", readFile(t, xrotate.DayActiveName(active, yesterday)))
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"rotate 缺少 --file", []string{"rotate"}},
		{"compress 缺少文件", []string{"compress"}},
		{"compress 非法级别", []string{"compress", "--level", "42", "x"}},
		{"compress 非法并行数", []string{"compress", "-j", "0", "x"}},
		{"pipe 多余参数", []string{"pipe", "extra"}},
		{"pipe 非法级别", []string{"pipe", "--stamp", "--level", "loud"}},
		{"pipe 负阈值", []string{"pipe", "--max-size", "-1"}},
		{"未知 flag", []string{"pipe", "--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, "", tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestPipe_BadConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "", "pipe", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "错误")
}
