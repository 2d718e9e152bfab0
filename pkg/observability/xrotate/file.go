package xrotate

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlogwriter/pkg/util/xfile"
)

// File 默认配置值
const (
	// DefaultFileMode 活动文件的默认权限
	DefaultFileMode os.FileMode = 0o640

	// bytesPerMB 大小阈值按十进制 MB 换算
	bytesPerMB = 1_000_000
)

type fileConfig struct {
	maxSizeMB  int64
	compress   bool
	level      int
	fileMode   os.FileMode
	now        func() time.Time
	onError    func(error)
	onRotate   func(Kind)
	onCompress func(string, error)
}

// FileOption File 配置选项函数
type FileOption func(*fileConfig)

// WithMaxSizeMB 设置按大小轮转的阈值（十进制 MB，1 MB = 1,000,000 字节）。
// 0 表示不按大小轮转。
func WithMaxSizeMB(mb int64) FileOption {
	return func(c *fileConfig) {
		c.maxSizeMB = mb
	}
}

// WithCompression 设置是否压缩轮转出的段
func WithCompression(enable bool) FileOption {
	return func(c *fileConfig) {
		c.compress = enable
	}
}

// WithCompressionLevel 设置 gzip 压缩级别，默认 [DefaultCompressionLevel]
func WithCompressionLevel(level int) FileOption {
	return func(c *fileConfig) {
		c.level = level
	}
}

// WithFileMode 设置活动文件的创建权限，默认 [DefaultFileMode]
func WithFileMode(mode os.FileMode) FileOption {
	return func(c *fileConfig) {
		c.fileMode = mode
	}
}

// WithClock 设置时钟，按天轮转用它判断"今天"。主要用于测试。
func WithClock(now func() time.Time) FileOption {
	return func(c *fileConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOnError 设置内部错误回调。
//
// 轮转中单个文件的改名、压缩失败以及关闭文件失败通过此回调逐个上报。
// 回调在持有文件锁时同步执行，不得回写同一个 File，否则死锁。
func WithOnError(fn func(error)) FileOption {
	return func(c *fileConfig) {
		c.onError = fn
	}
}

// WithOnRotate 设置轮转完成回调（用于指标统计）
func WithOnRotate(fn func(Kind)) FileOption {
	return func(c *fileConfig) {
		c.onRotate = fn
	}
}

// WithOnCompress 设置单个段压缩完成回调，err 非 nil 表示压缩失败。
func WithOnCompress(fn func(path string, err error)) FileOption {
	return func(c *fileConfig) {
		c.onCompress = fn
	}
}

// File 活动日志文件及其轮转策略。
//
// 每批写入都以追加方式打开、写入后立即关闭，不跨批持有文件句柄，
// 因此轮转可以在两批之间自由改名。写入、按大小轮转、按天轮转和
// 切换路径由同一把互斥锁串行化。
type File struct {
	mu         sync.Mutex
	path       string
	maxBytes   int64
	compress   bool
	fileMode   os.FileMode
	compressor *Compressor
	now        func() time.Time
	onError    func(error)
	onRotate   func(Kind)
	onCompress func(string, error)

	// nextDayDelay 最近一次按天检查算出的下次检查延迟，仅由 RotateByDay 写入
	nextDayDelay atomic.Int64
	closed       atomic.Bool
}

var _ Rotator = (*File)(nil)

// NewFile 创建活动文件。
//
// 会对路径做格式检查并创建不存在的父目录；目录无法创建时返回 [ErrDirectory]。
// 活动文件本身延迟到第一次写入时创建。
func NewFile(path string, opts ...FileOption) (*File, error) {
	if path == "" {
		return nil, ErrEmptyFilename
	}

	cfg := fileConfig{
		level:    DefaultCompressionLevel,
		fileMode: DefaultFileMode,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.maxSizeMB < 0 {
		return nil, fmt.Errorf("%w: got %d, want >= 0", ErrInvalidMaxSize, cfg.maxSizeMB)
	}
	if cfg.fileMode == 0 || cfg.fileMode&^os.FileMode(0o777) != 0 {
		return nil, fmt.Errorf("%w: got %04o, only permission bits (0001~0777) allowed",
			ErrInvalidFileMode, cfg.fileMode)
	}
	compressor, err := NewCompressor(cfg.level)
	if err != nil {
		return nil, err
	}

	safePath, err := preparePath(path)
	if err != nil {
		return nil, err
	}

	return &File{
		path:       safePath,
		maxBytes:   cfg.maxSizeMB * bytesPerMB,
		compress:   cfg.compress,
		fileMode:   cfg.fileMode,
		compressor: compressor,
		now:        cfg.now,
		onError:    cfg.onError,
		onRotate:   cfg.onRotate,
		onCompress: cfg.onCompress,
	}, nil
}

// preparePath 规范化路径并确保父目录存在
func preparePath(path string) (string, error) {
	safePath, err := xfile.SanitizePath(path)
	if err != nil {
		return "", err
	}
	if err := xfile.EnsureDir(safePath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDirectory, err)
	}
	return safePath, nil
}

// Path 返回活动文件路径
func (f *File) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// SetPath 切换活动文件路径，不执行按天检查。
func (f *File) SetPath(path string) error {
	return f.setPath(path, false)
}

// SetPathAndRotateByDay 切换活动文件路径，并在同一把锁内对新路径做一次按天检查。
//
// 返回值只反映路径切换本身；按天轮转中的错误通过 OnError 逐个上报。
// 两步之间不会插入写入，新路径上的旧文件不会因先被写入而躲过轮转。
func (f *File) SetPathAndRotateByDay(path string) error {
	return f.setPath(path, true)
}

func (f *File) setPath(path string, checkDay bool) error {
	if path == "" {
		return ErrEmptyFilename
	}
	safePath, err := preparePath(path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed.Load() {
		return ErrClosed
	}
	f.path = safePath
	if checkDay {
		now := f.now()
		// 错误已逐个上报
		_ = f.rotateByDayLocked(now)
		f.nextDayDelay.Store(int64(NextDayDelay(now)))
	}
	return nil
}

// WriteBatch 把一批消息追加到活动文件，每条消息后补一个换行符。
//
// 返回完整写入的消息条数。写入失败时返回已完整落盘的条数和包装 [ErrWrite] 的错误，
// 调用方只需重试剩余部分。写入成功后若活动文件达到阈值，同步执行按大小轮转；
// 轮转中的错误通过 OnError 上报，不影响返回值。
func (f *File) WriteBatch(msgs []string) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	size := 0
	for _, m := range msgs {
		size += len(m) + 1
	}
	buf := make([]byte, 0, size)
	ends := make([]int, len(msgs))
	for i, m := range msgs {
		buf = append(buf, m...)
		buf = append(buf, '\n')
		ends[i] = len(buf)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.appendLocked(buf, ends)
	if err != nil {
		// ends 中 <= n 的个数即完整写入的消息数
		return sort.SearchInts(ends, n+1), err
	}
	f.maybeRotateLocked()
	return len(msgs), nil
}

// Write 实现 io.Writer：原样追加 p，不补换行。
func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.appendLocked(p, nil)
	if err != nil {
		return n, err
	}
	f.maybeRotateLocked()
	return n, nil
}

// appendLocked 追加 p 并关闭文件。
//
// ends 非空时为 p 中各条消息的结束偏移：写入中途失败会把文件截回最后一条
// 完整消息的末尾，返回值随之对齐到该边界，文件中不留半条消息。
func (f *File) appendLocked(p []byte, ends []int) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, f.fileMode) //#nosec G304 -- 路径已经过 SanitizePath
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	var start int64
	if ends != nil {
		info, err := fh.Stat()
		if err != nil {
			_ = fh.Close()
			return 0, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		start = info.Size()
	}

	n, err := fh.Write(p)
	if err != nil && ends != nil {
		n = f.truncateLocked(fh, start, n, ends)
	}
	closeErr := fh.Close()
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if closeErr != nil {
		// 数据已交给内核，重试反而会重复写入
		f.reportError(fmt.Errorf("%w: close: %w", ErrWrite, closeErr))
	}
	return n, nil
}

// truncateLocked 把部分写入截回 ends 中不超过 n 的最后一个边界，返回保留的字节数。
// 截断失败时半条消息留在文件里，只能上报。
func (f *File) truncateLocked(fh *os.File, start int64, n int, ends []int) int {
	keep := 0
	if k := sort.SearchInts(ends, n+1); k > 0 {
		keep = ends[k-1]
	}
	if keep == n {
		return n
	}
	if err := fh.Truncate(start + int64(keep)); err != nil {
		f.reportError(fmt.Errorf("%w: truncate partial message: %w", ErrWrite, err))
		return n
	}
	return keep
}

// maybeRotateLocked 活动文件达到阈值时执行按大小轮转
func (f *File) maybeRotateLocked() {
	if f.maxBytes <= 0 {
		return
	}
	info, ok, err := xfile.Lookup(f.path)
	if err != nil {
		f.reportError(fmt.Errorf("xrotate: stat %s: %w", f.path, err))
		return
	}
	if !ok || info.Size() < f.maxBytes {
		return
	}
	// 单文件错误已经逐个上报
	_ = f.rotateBySizeLocked()
}

// Rotate 立即执行一次按大小轮转，不检查阈值。
//
// 活动文件不存在时只对已有段重新编号之外什么也不做。
func (f *File) Rotate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed.Load() {
		return ErrClosed
	}
	return f.rotateBySizeLocked()
}

// RotateByDay 执行一次按天检查，返回距离下一次检查的延迟。
//
// 活动文件存在且最后修改日期不是今天时执行按天轮转。无论是否轮转，
// 都会重新计算下次检查延迟并记录下来（见 [File.NextDayDelay]）。
func (f *File) RotateByDay() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed.Load() {
		return 0, ErrClosed
	}

	now := f.now()
	err := f.rotateByDayLocked(now)
	delay := NextDayDelay(now)
	f.nextDayDelay.Store(int64(delay))
	return delay, err
}

// NextDayDelay 返回最近一次按天检查算出的下次检查延迟；从未检查过时为 0。
func (f *File) NextDayDelay() time.Duration {
	return time.Duration(f.nextDayDelay.Load())
}

// Close 关闭 File。File 不跨批持有句柄，Close 只阻止后续写入和轮转。
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return ErrClosed
	}
	return nil
}

// compressLocked 压缩一个段，失败只上报
func (f *File) compressLocked(path string) {
	dst, err := f.compressor.Compress(path)
	if err == nil && dst == path {
		// 已是 gzip 内容
		return
	}
	if f.onCompress != nil {
		f.onCompress(path, err)
	}
	f.reportError(err)
}

// reportError 通过回调上报内部错误
//
// 回调 panic 被 recover 隔离，防止错误通知反向中断写入。
func (f *File) reportError(err error) {
	if err != nil && f.onError != nil {
		defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
		f.onError(err)
	}
}

func (f *File) notifyRotate(kind Kind) {
	if f.onRotate != nil {
		f.onRotate(kind)
	}
}

// renameLocked 改名单个文件，失败包装为 ErrRename 并上报。
//
// 目标已存在时拒绝改名：前面某个段改名失败后仍占着位置，覆盖它会丢数据。
func (f *File) renameLocked(from, to string) error {
	free, err := notExists(to)
	if err == nil && !free {
		err = os.ErrExist
	}
	if err == nil {
		err = os.Rename(from, to)
	}
	if err != nil {
		err = fmt.Errorf("%w: %s -> %s: %w", ErrRename, from, to, err)
		f.reportError(err)
		return err
	}
	return nil
}
