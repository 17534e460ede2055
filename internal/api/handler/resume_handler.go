package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/processor"
	"resume-extractor/internal/report"
	"resume-extractor/internal/tracing"
	"resume-extractor/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResumeService 处理器依赖的服务接口，*processor.ResumeService 实现了它
type ResumeService interface {
	ExtractUpload(ctx context.Context, filename string, data []byte) (*types.StoredResult, error)
	SubmitUpload(ctx context.Context, filename string, data []byte) (*types.StoredResult, error)
	GetResult(ctx context.Context, submissionUUID string) (*types.StoredResult, error)
	ListResults(ctx context.Context, limit int) ([]*types.StoredResult, error)
	Components() map[string]bool
}

var _ ResumeService = (*processor.ResumeService)(nil)

// ResumeHandler 简历提取相关的 HTTP 处理器
type ResumeHandler struct {
	cfg     *config.Config
	service ResumeService
	logger  zerolog.Logger
}

// NewResumeHandler 创建处理器
func NewResumeHandler(cfg *config.Config, service ResumeService) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		service: service,
		logger:  logger.Logger.With().Str("component", "resume_handler").Logger(),
	}
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// SummaryResponse 摘要响应
type SummaryResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Summary        string `json:"summary"`
}

// HandleExtract 同步提取：POST /resume/extract
func (h *ResumeHandler) HandleExtract(ctx context.Context, c *app.RequestContext) {
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	stored, err := h.service.ExtractUpload(ctx, filename, data)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, stored)
}

// HandleUpload 异步提交：POST /resume/upload
func (h *ResumeHandler) HandleUpload(ctx context.Context, c *app.RequestContext) {
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	stored, err := h.service.SubmitUpload(ctx, filename, data)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusAccepted, stored)
}

// HandleGetResult 查询结果：GET /resume/:uuid，?download=1 时以附件形式返回提取记录
func (h *ResumeHandler) HandleGetResult(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("uuid")
	stored, err := h.service.GetResult(ctx, submissionUUID)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	if !isTruthy(c.Query("download")) {
		c.JSON(consts.StatusOK, stored)
		return
	}

	if stored.Result == nil {
		c.JSON(consts.StatusConflict, ErrorResponse{Error: fmt.Sprintf("提交状态为 %s，没有可下载的提取结果", stored.Status)})
		return
	}
	body, err := json.MarshalIndent(stored.Result, "", "  ")
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="extracted_resume_%s.json"`, submissionUUID))
	c.Data(consts.StatusOK, consts.MIMEApplicationJSON, body)
}

// HandleSummary 文字摘要：GET /resume/:uuid/summary
func (h *ResumeHandler) HandleSummary(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("uuid")
	stored, err := h.service.GetResult(ctx, submissionUUID)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if stored.Result == nil {
		c.JSON(consts.StatusConflict, ErrorResponse{Error: fmt.Sprintf("提交状态为 %s，尚无提取结果", stored.Status)})
		return
	}
	c.JSON(consts.StatusOK, SummaryResponse{
		SubmissionUUID: stored.SubmissionUUID,
		Summary:        report.Summary(stored.Result),
	})
}

// HandleExport 导出最近的提交为 xlsx：GET /resumes/export?limit=N
func (h *ResumeHandler) HandleExport(ctx context.Context, c *app.RequestContext) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		val, err := strconv.Atoi(limitStr)
		if err != nil || val < 0 {
			c.JSON(consts.StatusBadRequest, ErrorResponse{Error: "limit 必须是非负整数"})
			return
		}
		limit = val
	}

	records, err := h.service.ListResults(ctx, limit)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	data, err := report.ExportXLSX(records)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="resumes.xlsx"`)
	c.Data(consts.StatusOK, xlsxContentType, data)
}

// HandleHealth 健康检查
func (h *ResumeHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":     "ok",
		"components": h.service.Components(),
	})
}

// readUpload 读取 multipart 的 file 字段，失败时已写好响应
func (h *ResumeHandler) readUpload(c *app.RequestContext) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, ErrorResponse{Error: "文件未找到"})
		return "", nil, false
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(consts.StatusBadRequest, ErrorResponse{Error: "仅支持PDF文件"})
		return "", nil, false
	}
	if maxSize := h.cfg.MaxUploadBytes(); maxSize > 0 && fileHeader.Size > maxSize {
		c.JSON(consts.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("文件超过 %d 字节上限", maxSize)})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, ErrorResponse{Error: "打开文件失败"})
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, ErrorResponse{Error: "读取文件失败"})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

// StatusForError 错误到 HTTP 状态码的映射
func StatusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrDocumentOpen):
		return consts.StatusUnprocessableEntity
	case errors.Is(err, types.ErrModelUnavailable):
		return consts.StatusServiceUnavailable
	case errors.Is(err, processor.ErrResultNotFound):
		return consts.StatusNotFound
	case errors.Is(err, processor.ErrStorageUnavailable):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

func (h *ResumeHandler) writeError(ctx context.Context, c *app.RequestContext, err error) {
	status := StatusForError(err)
	event := h.logger.Warn()
	if status >= consts.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", string(c.Path())).
		Str("request_id", c.GetString(RequestIDKey)).
		Msg("请求处理失败")
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)

	resp := ErrorResponse{Error: err.Error()}
	if errors.Is(err, types.ErrDocumentOpen) || errors.Is(err, types.ErrModelUnavailable) {
		resp.ErrorKind = types.ErrorKind(err)
	}
	c.JSON(status, resp)
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
