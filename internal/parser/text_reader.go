// Package parser 把分页文档转换为一段线性文本
package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/types"

	"github.com/rs/zerolog"
)

// 支持的解析后端
const (
	TypeEino       = "eino"
	TypeLedongthuc = "ledongthuc"
)

// DefaultParseTimeout 未配置超时时单个文档的解析上限
const DefaultParseTimeout = 60 * time.Second

// TextReader 与 extractor.TextReader 相同，方便调用方只依赖 parser 包
type TextReader = extractor.TextReader

// Option 解析器通用配置项
type Option func(*readerOptions)

type readerOptions struct {
	logger  *zerolog.Logger
	timeout time.Duration
}

// WithLogger 指定解析器使用的日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(o *readerOptions) {
		o.logger = &l
	}
}

// WithTimeout 单个文档的解析超时，<=0 时使用 DefaultParseTimeout
func WithTimeout(d time.Duration) Option {
	return func(o *readerOptions) {
		o.timeout = d
	}
}

// BuildTextReader 根据配置返回合适的文档读取器实现
func BuildTextReader(ctx context.Context, cfg *config.Config, opts ...Option) (TextReader, error) {
	kind := TypeLedongthuc
	if cfg != nil && cfg.Parser.Type != "" {
		kind = cfg.Parser.Type
	}
	if cfg != nil && cfg.Parser.TimeoutSeconds > 0 {
		opts = append([]Option{WithTimeout(time.Duration(cfg.Parser.TimeoutSeconds) * time.Second)}, opts...)
	}

	switch kind {
	case TypeEino:
		return NewEinoTextReader(ctx, opts...)
	case TypeLedongthuc:
		return NewLedongthucTextReader(opts...), nil
	default:
		return nil, fmt.Errorf("未知的文档解析器类型: %s", kind)
	}
}

// openDocument 打开文档文件，失败统一转换为 DocumentOpenError
func openDocument(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewDocumentOpenError(path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, types.NewDocumentOpenError(path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, types.NewDocumentOpenError(path, fmt.Errorf("是目录而不是文件"))
	}
	return f, nil
}

func readAll(r io.Reader, uri string) ([]byte, error) {
	if r == nil {
		return nil, types.NewDocumentOpenError(uri, fmt.Errorf("reader 为空"))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, types.NewDocumentOpenError(uri, err)
	}
	return data, nil
}

func (o readerOptions) parseTimeout() time.Duration {
	if o.timeout <= 0 {
		return DefaultParseTimeout
	}
	return o.timeout
}

// parseGuarded 在独立 goroutine 中运行 parse，超时或 ctx 取消时立即返回 DocumentOpenError
// 底层 PDF 库不检查 ctx，畸形文件可能让它一直循环；超时后该 goroutine 会继续运行到 parse 自行返回
// parse 中的 panic 同样转换为 DocumentOpenError
func parseGuarded(ctx context.Context, timeout time.Duration, uri string, parse func(ctx context.Context) (string, error)) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res = result{err: types.NewDocumentOpenError(uri, fmt.Errorf("pdf panic: %v", r))}
			}
			done <- res
		}()
		res.text, res.err = parse(ctx)
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", types.NewDocumentOpenError(uri, fmt.Errorf("解析中止: %w", ctx.Err()))
	}
}
