package models

import (
	"encoding/json"
	"fmt"
	"time"

	"resume-extractor/internal/types"

	"gorm.io/datatypes"
)

// ExtractionResult 简历提取结果表，一次提交一行
type ExtractionResult struct {
	SubmissionUUID    string         `gorm:"type:char(36);primaryKey"`
	OriginalFilename  string         `gorm:"type:varchar(255)"`
	OriginalObjectKey string         `gorm:"type:varchar(1024)"`
	FileMD5           string         `gorm:"type:char(32);index:idx_er_file_md5"`
	Status            string         `gorm:"type:varchar(50);default:'PENDING_EXTRACTION';index:idx_er_status"`
	ErrorKind         string         `gorm:"type:varchar(50)"`
	ErrorMessage      string         `gorm:"type:text"`
	ResultJSON        datatypes.JSON `gorm:"type:json"`
	ExtractorVersion  string         `gorm:"type:varchar(20)"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_er_created_at"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ExtractionResult) TableName() string {
	return "extraction_results"
}

// FromStored 把领域对象转换为数据库行
func FromStored(r *types.StoredResult, extractorVersion string) (*ExtractionResult, error) {
	row := &ExtractionResult{
		SubmissionUUID:    r.SubmissionUUID,
		OriginalFilename:  r.OriginalFilename,
		OriginalObjectKey: r.OriginalObjectKey,
		FileMD5:           r.FileMD5,
		Status:            string(r.Status),
		ErrorKind:         r.ErrorKind,
		ErrorMessage:      r.ErrorMessage,
		ExtractorVersion:  extractorVersion,
		CreatedAt:         r.CreatedAt,
	}
	if r.Result != nil {
		data, err := json.Marshal(r.Result)
		if err != nil {
			return nil, fmt.Errorf("序列化提取结果失败: %w", err)
		}
		row.ResultJSON = datatypes.JSON(data)
	}
	return row, nil
}

// ToStored 把数据库行转换为领域对象
func (e *ExtractionResult) ToStored() (*types.StoredResult, error) {
	out := &types.StoredResult{
		SubmissionUUID:    e.SubmissionUUID,
		OriginalFilename:  e.OriginalFilename,
		OriginalObjectKey: e.OriginalObjectKey,
		FileMD5:           e.FileMD5,
		Status:            types.ProcessingStatus(e.Status),
		ErrorKind:         e.ErrorKind,
		ErrorMessage:      e.ErrorMessage,
		CreatedAt:         e.CreatedAt,
	}
	if len(e.ResultJSON) > 0 && string(e.ResultJSON) != "null" {
		var rec types.ExtractedResume
		if err := json.Unmarshal(e.ResultJSON, &rec); err != nil {
			return nil, fmt.Errorf("解析提取结果JSON失败 (uuid=%s): %w", e.SubmissionUUID, err)
		}
		out.Result = &rec
	}
	return out, nil
}
