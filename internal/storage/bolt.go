package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"resume-extractor/internal/types"

	bolt "go.etcd.io/bbolt"
)

var resultsBucket = []byte("extraction_results")

// BoltResultLog 单文件的本地结果日志，没有 MySQL 时使用
// key 为 SubmissionUUID，value 为 StoredResult 的 JSON
type BoltResultLog struct {
	path string
	db   *bolt.DB
}

// OpenBoltResultLog 打开或创建结果日志文件
func OpenBoltResultLog(path string) (*BoltResultLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建结果日志目录失败: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("打开结果日志 %s 失败: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("创建结果桶失败: %w", err)
	}

	return &BoltResultLog{path: path, db: db}, nil
}

// Path 日志文件路径
func (b *BoltResultLog) Path() string {
	return b.path
}

// SaveResult 写入或覆盖一条记录
func (b *BoltResultLog) SaveResult(ctx context.Context, result *types.StoredResult) error {
	if result == nil || result.SubmissionUUID == "" {
		return fmt.Errorf("提交记录缺少 submission_uuid")
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化提取结果失败: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).Put([]byte(result.SubmissionUUID), data)
	})
}

// GetResult 不存在时返回 ErrResultNotFound
func (b *BoltResultLog) GetResult(ctx context.Context, submissionUUID string) (*types.StoredResult, error) {
	var stored *types.StoredResult
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(resultsBucket).Get([]byte(submissionUUID))
		if v == nil {
			return ErrResultNotFound
		}
		stored = &types.StoredResult{}
		return json.Unmarshal(v, stored)
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListResults 按创建时间倒序返回最多 limit 条，limit<=0 表示全部
func (b *BoltResultLog) ListResults(ctx context.Context, limit int) ([]*types.StoredResult, error) {
	var out []*types.StoredResult
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).ForEach(func(k, v []byte) error {
			var stored types.StoredResult
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("解析记录 %s 失败: %w", k, err)
			}
			out = append(out, &stored)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// ForEach 按 key 升序，UUIDv7 本身按时间有序，这里再按创建时间稳定排序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close 关闭数据库文件
func (b *BoltResultLog) Close() error {
	return b.db.Close()
}
