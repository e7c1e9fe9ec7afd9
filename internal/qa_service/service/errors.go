package service

import (
	"errors"
	"fmt"
)

// Kind 对问答失败的每一种原因进行分类。
type Kind int

const (
	// KindInternal 覆盖所有不属于以下类别的失败。
	KindInternal Kind = iota
	KindMalformedInput
	KindMissingQuestion
	KindInvalidDateFormat
	KindNoContextFound
	KindStoreUnavailable
	KindCompletionProviderError
)

// String 返回日志中使用的类别名称。
func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "MalformedInput"
	case KindMissingQuestion:
		return "MissingQuestion"
	case KindInvalidDateFormat:
		return "InvalidDateFormat"
	case KindNoContextFound:
		return "NoContextFound"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	case KindCompletionProviderError:
		return "CompletionProviderError"
	default:
		return "Internal"
	}
}

// Error 表示流程中的一次失败。Err 保留底层原因，只用于内部日志，绝不返回给调用方。
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fail 用 kind 包装 err。
func Fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf 返回 err 携带的类别，没有时返回 KindInternal。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
