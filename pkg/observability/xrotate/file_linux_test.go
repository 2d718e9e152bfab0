//go:build linux

package xrotate

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitFileSize 临时降低进程的 RLIMIT_FSIZE，返回的函数恢复原值。
// 超限的 write 写入到上限为止，随后返回 EFBIG。
func limitFileSize(t *testing.T, limit uint64) func() {
	t.Helper()
	var orig syscall.Rlimit
	require.NoError(t, syscall.Getrlimit(syscall.RLIMIT_FSIZE, &orig))

	lowered := orig
	lowered.Cur = limit
	require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_FSIZE, &lowered))

	restored := false
	restore := func() {
		if !restored {
			restored = true
			require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_FSIZE, &orig))
		}
	}
	t.Cleanup(restore)
	return restore
}

func TestFile_ShortWriteKeepsWholeMessages(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		limit    uint64
		wantN    int
		wantFile string
	}{
		{name: "第二条写到一半", limit: 10, wantN: 1, wantFile: "aaaaaaa\n"},
		{name: "第一条写到一半", limit: 4, wantN: 0, wantFile: ""},
		{name: "已有内容后写到一半", existing: "old\n", limit: 10, wantN: 0, wantFile: "old\n"},
		{name: "恰好写完第一条", limit: 8, wantN: 1, wantFile: "aaaaaaa\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app.log")
			require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o600))
			f, err := NewFile(path)
			require.NoError(t, err)

			batch := []string{"aaaaaaa", "bbbbbbb"}
			restore := limitFileSize(t, tt.limit)
			n, err := f.WriteBatch(batch)
			restore()

			require.ErrorIs(t, err, ErrWrite)
			assert.ErrorIs(t, err, syscall.EFBIG)
			assert.Equal(t, tt.wantN, n)
			assert.Equal(t, tt.wantFile, readFile(t, path))

			// 只重写剩余部分，每一行都完整且不重复
			n, err = f.WriteBatch(batch[tt.wantN:])
			require.NoError(t, err)
			assert.Equal(t, len(batch)-tt.wantN, n)
			assert.Equal(t, tt.existing+"aaaaaaa\nbbbbbbb\n", readFile(t, path))
		})
	}
}
