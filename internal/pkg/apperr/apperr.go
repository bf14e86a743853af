// Package apperr 定义核心层向上传递的错误分类。
// 调用方（HTTP 层、CLI）据此映射为状态码或退出码，
// 核心层不会用空结果掩盖"上游不可用"。
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	// KindValidation 输入校验失败（缺少必填字段、长度不合法等）
	KindValidation Kind = iota + 1
	// KindNotFound 按 ID 查询无结果
	KindNotFound
	// KindUnavailable 上游数据不可用（存储读取失败、GitHub 完全不可达）
	KindUnavailable
)

// Error 带类别的错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定类别的错误
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 创建指定类别的格式化错误
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并附加类别
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf 提取错误类别，非本包错误返回 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
