package xrotate

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readGzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(data)
}

func TestCompressor_Compress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(src, []byte("line one\nline two\n"), 0o640))
	mtime := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	c, err := NewCompressor(DefaultCompressionLevel)
	require.NoError(t, err)

	dst, err := c.Compress(src)
	require.NoError(t, err)
	assert.Equal(t, src+".gz", dst)

	assert.NoFileExists(t, src)
	assert.Equal(t, "line one\nline two\n", readGzip(t, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "压缩产物应保留原修改时间")
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestCompressor_SkipAlreadyCompressed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o600))

	c, err := NewCompressor(DefaultCompressionLevel)
	require.NoError(t, err)

	dst, err := c.Compress(src)
	require.NoError(t, err)

	// 再次压缩同一个产物：无操作，无错误
	again, err := c.Compress(dst)
	require.NoError(t, err)
	assert.Equal(t, dst, again)
	assert.NoFileExists(t, dst+".gz")

	// 扩展名不是 .gz 但内容是 gzip：同样跳过
	foreign := filepath.Join(dir, "foreign.log.2")
	require.NoError(t, os.Rename(dst, foreign))
	got, err := c.Compress(foreign)
	require.NoError(t, err)
	assert.Equal(t, foreign, got)
	assert.Equal(t, "payload", readGzip(t, foreign))
}

func TestCompressor_ExistingTargetKeepsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(src, []byte("keep me"), 0o600))
	require.NoError(t, os.WriteFile(src+".gz", []byte("occupied"), 0o600))

	c, err := NewCompressor(DefaultCompressionLevel)
	require.NoError(t, err)

	_, err = c.Compress(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompress)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
	data, err = os.ReadFile(src + ".gz")
	require.NoError(t, err)
	assert.Equal(t, "occupied", string(data))
}

func TestIsCompressed(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	ok, err := IsCompressed(empty)
	require.NoError(t, err)
	assert.False(t, ok)

	one := filepath.Join(dir, "one")
	require.NoError(t, os.WriteFile(one, []byte{0x1f}, 0o600))
	ok, err = IsCompressed(one)
	require.NoError(t, err)
	assert.False(t, ok)

	magic := filepath.Join(dir, "magic.txt")
	require.NoError(t, os.WriteFile(magic, []byte{0x1f, 0x8b, 0x08}, 0o600))
	ok, err = IsCompressed(magic)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = IsCompressed(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestNewCompressor_InvalidLevel(t *testing.T) {
	_, err := NewCompressor(10)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = NewCompressor(-3)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
