package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"resume-extractor/internal/report"
	"resume-extractor/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
)

// documentExtractor 按路径提取单份文档
type documentExtractor interface {
	Extract(ctx context.Context, path string) (*types.ExtractedResume, error)
}

// resultSaver 可选的结果落盘
type resultSaver interface {
	SaveResult(ctx context.Context, result *types.StoredResult) error
}

type batchRunner struct {
	extractor documentExtractor
	saver     resultSaver
	logger    zerolog.Logger
	now       func() time.Time
	newUUID   func() (string, error)
}

func newBatchRunner(ext documentExtractor, saver resultSaver, log zerolog.Logger) *batchRunner {
	return &batchRunner{
		extractor: ext,
		saver:     saver,
		logger:    log,
		now:       time.Now,
		newUUID: func() (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
}

// run 逐个提取，单个文档失败不影响后续文档，返回所有记录和失败数
func (b *batchRunner) run(ctx context.Context, paths []string) ([]*types.StoredResult, int, error) {
	records := make([]*types.StoredResult, 0, len(paths))
	failed := 0

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return records, failed, err
		}

		id, err := b.newUUID()
		if err != nil {
			return records, failed, fmt.Errorf("生成提交ID失败: %w", err)
		}
		rec := &types.StoredResult{
			SubmissionUUID:   id,
			OriginalFilename: filepath.Base(path),
			CreatedAt:        b.now().UTC(),
		}

		start := time.Now()
		result, err := b.extractor.Extract(ctx, path)
		if err != nil {
			failed++
			rec.Status = types.StatusFailed
			rec.ErrorKind = types.ErrorKind(err)
			rec.ErrorMessage = err.Error()
			b.logger.Error().Err(err).Str("file", path).Str("error_kind", rec.ErrorKind).Msg("提取失败")
		} else {
			rec.Status = types.StatusExtracted
			rec.Result = result
			b.logger.Info().Str("file", path).Dur("elapsed", time.Since(start)).Msg("提取完成")
		}

		if b.saver != nil {
			if err := b.saver.SaveResult(ctx, rec); err != nil {
				return records, failed, fmt.Errorf("保存 %s 的结果失败: %w", path, err)
			}
		}
		records = append(records, rec)
	}

	return records, failed, nil
}

// summaries 每份文档一段摘要，失败的文档输出错误信息
func summaries(records []*types.StoredResult) string {
	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "== %s ==\n", rec.OriginalFilename)
		if rec.Result == nil {
			fmt.Fprintf(&sb, "Error (%s): %s", rec.ErrorKind, rec.ErrorMessage)
			continue
		}
		sb.WriteString(report.Summary(rec.Result))
	}
	sb.WriteString("\n")
	return sb.String()
}
