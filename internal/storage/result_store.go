package storage

import (
	"context"
	"errors"

	"resume-extractor/internal/types"
)

// ErrResultNotFound 指定的提交记录不存在
var ErrResultNotFound = errors.New("提取结果不存在")

// ResultStore 提取结果的持久化接口，MySQL 和本地 Bolt 日志都实现了它
type ResultStore interface {
	// SaveResult 按 SubmissionUUID 插入或覆盖
	SaveResult(ctx context.Context, result *types.StoredResult) error

	// GetResult 不存在时返回 ErrResultNotFound
	GetResult(ctx context.Context, submissionUUID string) (*types.StoredResult, error)

	// ListResults 按创建时间倒序返回最多 limit 条
	ListResults(ctx context.Context, limit int) ([]*types.StoredResult, error)

	Close() error
}

var (
	_ ResultStore = (*MySQL)(nil)
	_ ResultStore = (*BoltResultLog)(nil)
)
