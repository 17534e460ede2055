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

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
)

// EinoTextReader 使用 Eino PDF Parser 逐页提取文本
type EinoTextReader struct {
	parser  *pdf.PDFParser
	logger  zerolog.Logger
	timeout time.Duration
}

// NewEinoTextReader 初始化 Eino 文本读取器
// 按页解析，再按页序拼接，页与页之间不插入分隔符
func NewEinoTextReader(ctx context.Context, opts ...Option) (*EinoTextReader, error) {
	o := readerOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	r := &EinoTextReader{
		parser:  p,
		logger:  logger.Logger.With().Str("component", "parser").Str("backend", TypeEino).Logger(),
		timeout: o.parseTimeout(),
	}
	if o.logger != nil {
		r.logger = *o.logger
	}
	return r, nil
}

// ReadText 打开文件并提取全文
func (e *EinoTextReader) ReadText(ctx context.Context, path string) (string, error) {
	file, err := openDocument(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return e.ReadTextFromReader(ctx, file, path)
}

// ReadTextFromReader 从 io.Reader 中提取文本
func (e *EinoTextReader) ReadTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	data, err := readAll(reader, uri)
	if err != nil {
		return "", err
	}

	startTime := time.Now()
	var pages int
	text, err := parseGuarded(ctx, e.timeout, uri, func(ctx context.Context) (string, error) {
		docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
			einoParser.WithURI(uri),
			einoParser.WithExtraMeta(map[string]any{
				"source_uri": uri,
				"size_bytes": len(data),
			}),
		)
		if err != nil {
			return "", types.NewDocumentOpenError(uri, err)
		}

		var sb strings.Builder
		for _, doc := range docs {
			if doc == nil {
				continue
			}
			sb.WriteString(doc.Content)
		}
		pages = len(docs)
		return sb.String(), nil
	})
	if err != nil {
		e.logger.Debug().Err(err).Str("uri", uri).Msg("PDF 解析失败")
		return "", err
	}

	e.logger.Debug().
		Str("uri", uri).
		Int("pages", pages).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(startTime)).
		Msg("PDF 文本提取完成")
	return text, nil
}
