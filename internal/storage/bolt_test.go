package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"resume-extractor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *BoltResultLog {
	t.Helper()
	log, err := OpenBoltResultLog(filepath.Join(t.TempDir(), "nested", "results.db"))
	require.NoError(t, err, "打开结果日志不应失败")
	t.Cleanup(func() { log.Close() })
	return log
}

func TestBoltResultLogSaveAndGet(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	email := "jane@example.com"
	stored := &types.StoredResult{
		SubmissionUUID:   "0190a4b2-0000-7000-8000-000000000001",
		OriginalFilename: "jane.pdf",
		FileMD5:          "abc",
		Status:           types.StatusExtracted,
		Result: &types.ExtractedResume{
			Email:          &email,
			Skills:         []string{"SQL"},
			Certifications: []string{},
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, log.SaveResult(ctx, stored))

	got, err := log.GetResult(ctx, stored.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	// 覆盖写
	stored.Status = types.StatusFailed
	stored.ErrorKind = "document_open"
	require.NoError(t, log.SaveResult(ctx, stored))
	got, err = log.GetResult(ctx, stored.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
	assert.Equal(t, "document_open", got.ErrorKind)
}

func TestBoltResultLogNotFound(t *testing.T) {
	log := openTestLog(t)
	_, err := log.GetResult(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrResultNotFound))
}

func TestBoltResultLogRejectsEmptyUUID(t *testing.T) {
	log := openTestLog(t)
	assert.Error(t, log.SaveResult(context.Background(), &types.StoredResult{}))
	assert.Error(t, log.SaveResult(context.Background(), nil))
}

func TestBoltResultLogList(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		require.NoError(t, log.SaveResult(ctx, &types.StoredResult{
			SubmissionUUID: id,
			Status:         types.StatusExtracted,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := log.ListResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].SubmissionUUID, all[1].SubmissionUUID, all[2].SubmissionUUID}, "应按创建时间倒序")

	limited, err := log.ListResults(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestBoltResultLogReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	first, err := OpenBoltResultLog(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveResult(ctx, &types.StoredResult{SubmissionUUID: "keep", Status: types.StatusPending}))
	require.NoError(t, first.Close())

	second, err := OpenBoltResultLog(path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.GetResult(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero(), "保存时应补齐创建时间")
}
