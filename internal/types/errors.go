package types

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentOpen 文档不存在、损坏或不是期望的格式
	ErrDocumentOpen = errors.New("无法打开简历文档")
	// ErrModelUnavailable 实体识别模型无法加载
	ErrModelUnavailable = errors.New("实体识别模型不可用")
)

// DocumentOpenError 打开或解析文档失败，不重试，原样返回给调用方
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (路径:%s): %v", ErrDocumentOpen, e.Path, e.Err)
	}
	return fmt.Sprintf("%s (路径:%s)", ErrDocumentOpen, e.Path)
}

func (e *DocumentOpenError) Unwrap() error {
	return e.Err
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *DocumentOpenError) Is(target error) bool {
	return target == ErrDocumentOpen
}

// NewDocumentOpenError 构造文档打开错误
func NewDocumentOpenError(path string, err error) error {
	return &DocumentOpenError{Path: path, Err: err}
}

// ModelUnavailableError 实体识别模型缺失或初始化失败
type ModelUnavailableError struct {
	Source string
	Err    error
}

func (e *ModelUnavailableError) Error() string {
	source := e.Source
	if source == "" {
		source = "unknown"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (来源:%s): %v", ErrModelUnavailable, source, e.Err)
	}
	return fmt.Sprintf("%s (来源:%s)", ErrModelUnavailable, source)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ModelUnavailableError) Is(target error) bool {
	return target == ErrModelUnavailable
}

// NewModelUnavailableError 构造模型不可用错误
func NewModelUnavailableError(source string, err error) error {
	return &ModelUnavailableError{Source: source, Err: err}
}

// ErrorKind 返回错误分类，用于持久化和接口响应
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDocumentOpen):
		return "document_open"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "internal"
	}
}
