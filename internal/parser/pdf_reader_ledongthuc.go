package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// LedongthucTextReader 直接使用 ledongthuc/pdf 逐页读取纯文本，不依赖 Eino
type LedongthucTextReader struct {
	logger  zerolog.Logger
	timeout time.Duration
}

// NewLedongthucTextReader 创建读取器
func NewLedongthucTextReader(opts ...Option) *LedongthucTextReader {
	o := readerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	r := &LedongthucTextReader{
		logger:  logger.Logger.With().Str("component", "parser").Str("backend", TypeLedongthuc).Logger(),
		timeout: o.parseTimeout(),
	}
	if o.logger != nil {
		r.logger = *o.logger
	}
	return r
}

// ReadText 打开文件并提取全文
func (l *LedongthucTextReader) ReadText(ctx context.Context, path string) (string, error) {
	file, err := openDocument(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", types.NewDocumentOpenError(path, err)
	}
	return l.read(ctx, file, info.Size(), path)
}

// ReadTextFromReader 读入内存后解析
func (l *LedongthucTextReader) ReadTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	data, err := readAll(reader, uri)
	if err != nil {
		return "", err
	}
	return l.read(ctx, bytes.NewReader(data), int64(len(data)), uri)
}

func (l *LedongthucTextReader) read(ctx context.Context, ra io.ReaderAt, size int64, uri string) (string, error) {
	startTime := time.Now()
	text, err := parseGuarded(ctx, l.timeout, uri, func(ctx context.Context) (string, error) {
		return l.extract(ctx, ra, size, uri)
	})
	if err != nil {
		l.logger.Debug().Err(err).Str("uri", uri).Msg("PDF 解析失败")
		return "", err
	}

	l.logger.Debug().
		Str("uri", uri).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(startTime)).
		Msg("PDF 文本提取完成")
	return text, nil
}

// extract 逐页读取纯文本，每页之前检查 ctx
func (l *LedongthucTextReader) extract(ctx context.Context, ra io.ReaderAt, size int64, uri string) (string, error) {
	pdfReader, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", types.NewDocumentOpenError(uri, err)
	}

	var sb strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", types.NewDocumentOpenError(uri, err)
		}

		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", types.NewDocumentOpenError(uri, fmt.Errorf("第 %d 页: %w", i, err))
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
