package types

import "time"

// ExtractedResume 单份简历的字段提取结果
// 每次提取新建，构建完成后不再修改；缺失字段用 nil 表示，集合字段始终非 nil
type ExtractedResume struct {
	// 候选人姓名（实体识别得到的第一个 PERSON）
	Name *string `json:"name"`
	// 第一个邮箱
	Email *string `json:"email"`
	// 第一个电话号码
	Phone *string `json:"phone"`
	// 命中的技能，按词表顺序
	Skills []string `json:"skills"`
	// 归一化后的工作年限，例如 "5 years"
	Experience *string `json:"experience"`
	// 含认证关键词的原始行，按文档顺序
	Certifications []string `json:"certifications"`
}

// StringValue 返回可选字段的值，nil 时返回空串
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsEmpty 判断是否所有字段都为空
func (r *ExtractedResume) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Experience == nil &&
		len(r.Skills) == 0 && len(r.Certifications) == 0
}

// ProcessingStatus 提交记录的处理状态
type ProcessingStatus string

const (
	// StatusPending 已入队，等待提取
	StatusPending ProcessingStatus = "PENDING_EXTRACTION"
	// StatusExtracted 提取成功
	StatusExtracted ProcessingStatus = "EXTRACTED"
	// StatusFailed 提取失败
	StatusFailed ProcessingStatus = "FAILED"
)

// StoredResult 持久化后的提取结果
type StoredResult struct {
	SubmissionUUID    string           `json:"submission_uuid"`
	OriginalFilename  string           `json:"original_filename"`
	OriginalObjectKey string           `json:"original_object_key,omitempty"` // 异步提交时原件在对象存储中的路径
	FileMD5           string           `json:"file_md5"`
	Status            ProcessingStatus `json:"status"`
	ErrorKind         string           `json:"error_kind,omitempty"`
	ErrorMessage      string           `json:"error_message,omitempty"`
	Result            *ExtractedResume `json:"result"`
	CreatedAt         time.Time        `json:"created_at"`
}
