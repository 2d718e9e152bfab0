package xrotate

import (
	"errors"
	"fmt"

	"github.com/omeyang/xlogwriter/pkg/util/xfile"
)

// rotateBySizeLocked 按大小轮转。调用方必须持有 f.mu。
//
//  1. 列出 <name>.* 段并按段号数字感知降序排列
//  2. 逐个改名为 <name>.<N+1>（内容已是 gzip 时为 <name>.<N+1>.gz）
//  3. 活动文件改名为 <name>.1
//  4. 开启压缩时压缩 <name>.1 和所有未压缩的改名段
//
// 降序处理保证改名目标不会覆盖尚未处理的段。对连续的 1..count，
// 这与"从 count+1 开始递减编号"完全一致。
func (f *File) rotateBySizeLocked() error {
	segs, err := ListSegments(f.path)
	if err != nil {
		f.reportError(err)
		return err
	}

	var errs []error
	pending := make([]string, 0, len(segs)+1)

	for _, s := range segs {
		compressed, err := IsCompressed(s.Path)
		if err != nil {
			err = fmt.Errorf("xrotate: inspect %s: %w", s.Path, err)
			f.reportError(err)
			errs = append(errs, err)
		}
		target := SizeSegmentName(f.path, s.Seq+1, compressed)
		if err := f.renameLocked(s.Path, target); err != nil {
			errs = append(errs, err)
			continue
		}
		if !compressed {
			pending = append(pending, target)
		}
	}

	_, exists, err := xfile.Lookup(f.path)
	switch {
	case err != nil:
		err = fmt.Errorf("xrotate: stat %s: %w", f.path, err)
		f.reportError(err)
		errs = append(errs, err)
	case exists:
		first := SizeSegmentName(f.path, 1, false)
		if err := f.renameLocked(f.path, first); err != nil {
			errs = append(errs, err)
		} else {
			pending = append(pending, first)
		}
	}

	if f.compress {
		for _, p := range pending {
			f.compressLocked(p)
		}
	}

	f.notifyRotate(KindSize)
	return errors.Join(errs...)
}
