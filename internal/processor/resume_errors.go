package processor

import (
	"errors"
	"fmt"

	"resume-extractor/internal/storage"
)

// 定义基础错误类型
var (
	ErrResumeDownloadFailed = errors.New("下载简历原件失败")
	ErrStoreOriginalFailed  = errors.New("保存简历原件失败")
	ErrPublishMessageFailed = errors.New("发布消息到提取队列失败")
	ErrSaveResultFailed     = errors.New("保存提取结果失败")
	ErrStorageUnavailable   = errors.New("所需的存储组件未配置")

	// ErrResultNotFound 与存储层共用同一个哨兵，两边都能用 errors.Is 判断
	ErrResultNotFound = storage.ErrResultNotFound
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewDownloadError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "download",
		BaseErr:        ErrResumeDownloadFailed,
		Detail:         detail,
	}
}

func NewStoreOriginalError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "store_original",
		BaseErr:        ErrStoreOriginalFailed,
		Detail:         detail,
	}
}

func NewPublishError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "publish",
		BaseErr:        ErrPublishMessageFailed,
		Detail:         detail,
	}
}

func NewSaveResultError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "save_result",
		BaseErr:        ErrSaveResultFailed,
		Detail:         detail,
	}
}

func NewNotFoundError(uuid string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "get_result",
		BaseErr:        ErrResultNotFound,
	}
}

// NewStorageUnavailableError op 为需要该组件的操作，detail 说明缺了哪个组件
func NewStorageUnavailableError(op, detail string) error {
	return &ResumeProcessError{
		Op:      op,
		BaseErr: ErrStorageUnavailable,
		Detail:  detail,
	}
}
