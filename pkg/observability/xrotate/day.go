package xrotate

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/omeyang/xlogwriter/pkg/util/xfile"
)

// minDayDelay 日界已过时的最小检查间隔，避免在 23:59:59~00:00:00 之间空转
const minDayDelay = 100 * time.Millisecond

// EndOfDay 返回 t 所在日期的 23:59:59（t 的时区）。
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// NextDayDelay 计算从 now 到下一次按天检查的延迟。
//
// 日界（23:59:59）在未来时为 日界-now；已经过去时为 now-日界，
// 即很快再检查一次以追上日期变化，进入次日后恢复为约 24h 的节奏。
// 结果至少为 100ms。
func NextDayDelay(now time.Time) time.Duration {
	boundary := EndOfDay(now)
	var d time.Duration
	if boundary.After(now) {
		d = boundary.Sub(now)
	} else {
		d = now.Sub(boundary)
	}
	return max(d, minDayDelay)
}

// SameDate 判断 a 与 b 在 b 的时区下是否为同一天
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// rotateByDayLocked 按天轮转。调用方必须持有 f.mu。
//
//  1. 活动文件不存在或今天修改过：什么也不做
//  2. 活动文件改名为 <stem>-<修改日期>.log
//  3. 每个 <name>.* 段改名为 <日期>-<原文件名>，日期取该段自身的修改日期
//  4. 开启压缩时压缩所有未压缩的改名结果
func (f *File) rotateByDayLocked(now time.Time) error {
	info, ok, err := xfile.Lookup(f.path)
	if err != nil {
		err = fmt.Errorf("xrotate: stat %s: %w", f.path, err)
		f.reportError(err)
		return err
	}
	if !ok || SameDate(info.ModTime(), now) {
		return nil
	}

	loc := now.Location()
	var errs []error
	var pending []string

	target, err := FreeName(DayActiveName(f.path, info.ModTime().In(loc)))
	if err == nil {
		err = f.renameLocked(f.path, target)
	} else {
		f.reportError(err)
	}
	if err != nil {
		errs = append(errs, err)
	} else {
		pending = append(pending, target)
	}

	matches, err := listMatching(f.path)
	if err != nil {
		f.reportError(err)
		errs = append(errs, err)
	}
	for _, m := range matches {
		renamed, err := f.retireSegmentLocked(m, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pending = append(pending, renamed)
	}

	if f.compress {
		for _, p := range pending {
			// Compress 自身会跳过已压缩的内容
			f.compressLocked(p)
		}
	}

	f.notifyRotate(KindDay)
	return errors.Join(errs...)
}

// retireSegmentLocked 把一个大小段改名为带日期前缀的名字
func (f *File) retireSegmentLocked(path string, loc *time.Location) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		err = fmt.Errorf("%w: stat %s: %w", ErrRename, path, err)
		f.reportError(err)
		return "", err
	}
	target, err := FreeName(DaySegmentName(path, info.ModTime().In(loc)))
	if err != nil {
		f.reportError(err)
		return "", err
	}
	if err := f.renameLocked(path, target); err != nil {
		return "", err
	}
	return target, nil
}
