package xretry

import (
	"errors"

	retry "github.com/avast/retry-go/v5"
)

var (
	// ErrNilRetryer 在 nil *Retryer 上调用 Do
	ErrNilRetryer = errors.New("xretry: nil retryer")

	// ErrNilContext 传入 nil context
	ErrNilContext = errors.New("xretry: nil context")

	// ErrNilFunc 传入 nil 函数
	ErrNilFunc = errors.New("xretry: nil function")
)

// Unrecoverable 把错误标记为 retry-go 的不可恢复错误
var Unrecoverable = retry.Unrecoverable

// RetryableError 自带可重试标记的错误
type RetryableError interface {
	error
	Retryable() bool
}

// PermanentError 永久性错误，不会被重试
type PermanentError struct {
	Err error
}

// NewPermanentError 把 err 标记为永久性错误
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error   { return e.Err }
func (e *PermanentError) Retryable() bool { return false }

// IsRetryable 判断 err 是否值得重试。
//
// nil 不需要重试；实现 [RetryableError] 的按其标记；其余错误默认可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}
