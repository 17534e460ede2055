package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"resume-extractor/internal/config"
	"resume-extractor/internal/processor"
	"resume-extractor/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"文档无法打开", types.NewDocumentOpenError("a.pdf", errors.New("bad")), consts.StatusUnprocessableEntity},
		{"包装后的文档错误", fmt.Errorf("提取失败: %w", types.NewDocumentOpenError("a.pdf", nil)), consts.StatusUnprocessableEntity},
		{"模型不可用", types.NewModelUnavailableError("/models", nil), consts.StatusServiceUnavailable},
		{"结果不存在", processor.NewNotFoundError("u1"), consts.StatusNotFound},
		{"存储未配置", processor.NewStorageUnavailableError("submit", "minio"), consts.StatusServiceUnavailable},
		{"其他", errors.New("boom"), consts.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes"} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "no"} {
		assert.False(t, isTruthy(v), v)
	}
}

func TestWriteErrorRecordsOnRequestSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	ctx, span := tp.Tracer("test").Start(context.Background(), "POST /api/v1/resume/extract")

	h := NewResumeHandler(config.DefaultConfig(), nil)
	c := app.NewContext(0)
	h.writeError(ctx, c, types.NewDocumentOpenError("broken.pdf", errors.New("bad xref")))
	span.End()

	assert.Equal(t, consts.StatusUnprocessableEntity, c.Response.StatusCode())
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
	assert.Equal(t, "document_open", body.ErrorKind)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	attrs := make(map[string]string)
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "http", attrs["error.type"])
	assert.Equal(t, "422", attrs["http.status_code"])
	assert.Equal(t, "client_error", attrs["error.category"])
}
