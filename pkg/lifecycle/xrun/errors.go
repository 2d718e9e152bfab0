package xrun

import (
	"errors"
	"fmt"
	"os"
)

// ErrSignal 表示因收到系统信号而终止，用 errors.Is(err, ErrSignal) 判断。
var ErrSignal = errors.New("received signal")

// ErrNilFunc 传入的循环函数为 nil
var ErrNilFunc = errors.New("xrun: nil function")

// ErrInvalidInterval 循环间隔必须为正数
var ErrInvalidInterval = errors.New("xrun: interval must be positive")

// ErrInvalidDelay 首次延迟不能为负数
var ErrInvalidDelay = errors.New("xrun: delay must not be negative")

// SignalError 包含触发终止的具体信号。
//
//	var sigErr *xrun.SignalError
//	if errors.As(err, &sigErr) {
//	    fmt.Printf("received signal: %v\n", sigErr.Signal)
//	}
type SignalError struct {
	Signal os.Signal
}

// Error 实现 error 接口。
func (e *SignalError) Error() string {
	if e.Signal == nil {
		return "received signal <nil>"
	}
	return fmt.Sprintf("received signal %s", e.Signal)
}

// Is 支持 errors.Is(err, ErrSignal)。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}

// Unwrap 返回 ErrSignal。
func (e *SignalError) Unwrap() error {
	return ErrSignal
}
