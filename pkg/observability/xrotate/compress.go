package xrotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// gzipMagic gzip 容器的前两个字节
var gzipMagic = []byte{0x1f, 0x8b}

// DefaultCompressionLevel 默认压缩级别，等价于 gzip -9
const DefaultCompressionLevel = gzip.BestCompression

// IsCompressed 按文件内容判断 path 是否已是 gzip 文件。
//
// 空文件和短于两个字节的文件视为未压缩。
func IsCompressed(path string) (bool, error) {
	f, err := os.Open(path) //#nosec G304 -- 路径来自轮转器自身枚举的段
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(gzipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, gzipMagic), nil
}

// Compressor 把单个已退役的段压缩为 <path>.gz 并删除原文件。
type Compressor struct {
	level int
}

// NewCompressor 创建压缩器，level 取值同 compress/gzip（-2~9）。
func NewCompressor(level int) (*Compressor, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	return &Compressor{level: level}, nil
}

// Compress 压缩 path，返回压缩产物的路径。
//
// path 已经是 gzip 内容时不做任何操作，返回 path 本身。
// 失败时删除不完整的 .gz 文件，原文件保持不变；返回的错误包装 [ErrCompress]。
// 压缩产物保留原文件的权限和修改时间，按天轮转依赖修改时间取日期。
func (c *Compressor) Compress(path string) (string, error) {
	compressed, err := IsCompressed(path)
	if err != nil {
		return path, fmt.Errorf("%w: %s: %w", ErrCompress, path, err)
	}
	if compressed {
		return path, nil
	}

	dst := path + CompressedExt
	if err := c.compressTo(path, dst); err != nil {
		return path, fmt.Errorf("%w: %s: %w", ErrCompress, path, err)
	}
	return dst, nil
}

func (c *Compressor) compressTo(src, dst string) (err error) {
	in, err := os.Open(src) //#nosec G304 -- 路径来自轮转器自身
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	// O_EXCL: 不覆盖已存在的同名压缩段
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm()) //#nosec G304
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	gz, err := gzip.NewWriterLevel(out, c.level)
	if err != nil {
		return err
	}
	gz.Name = filepath.Base(src)
	gz.ModTime = info.ModTime()

	if _, err = io.Copy(gz, in); err != nil {
		_ = gz.Close()
		return err
	}
	if err = gz.Close(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return err
	}
	_ = in.Close()
	return os.Remove(src)
}
