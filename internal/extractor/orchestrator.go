package extractor

import (
	"context"
	"fmt"
	"io"
	"time"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"

	"github.com/rs/zerolog"
)

// TextReader 把分页文档转成一段线性文本
type TextReader interface {
	// ReadText 打开路径指向的文档并按页序拼接文本
	ReadText(ctx context.Context, path string) (string, error)

	// ReadTextFromReader 从 io.Reader 读取文档，uri 仅用于日志和错误信息
	ReadTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error)
}

// Orchestrator 对一份文档运行全部字段提取器并组装结果
// 自身不持有可变状态，可在多个 goroutine 间共享
type Orchestrator struct {
	reader         TextReader
	names          *NameExtractor
	skills         *SkillsExtractor
	certifications *CertificationExtractor
	logger         zerolog.Logger
}

// Option 编排器选项
type Option func(*Orchestrator)

// WithSkillsVocabulary 设置技能词表
func WithSkillsVocabulary(vocabulary []string) Option {
	return func(o *Orchestrator) {
		o.skills = NewSkillsExtractor(vocabulary)
	}
}

// WithCertificationKeywords 设置认证关键词
func WithCertificationKeywords(keywords []string) Option {
	return func(o *Orchestrator) {
		o.certifications = NewCertificationExtractor(keywords)
	}
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator 创建编排器
// recognizer 是启动时加载好的模型句柄，所有调用共享，不会在调用路径上重新加载
func NewOrchestrator(reader TextReader, recognizer EntityRecognizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reader:         reader,
		names:          NewNameExtractor(recognizer),
		skills:         NewSkillsExtractor(DefaultSkillsVocabulary),
		certifications: NewCertificationExtractor(DefaultCertificationKeywords),
		logger:         logger.Logger.With().Str("component", "extractor").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract 读取 path 指向的文档并提取所有字段
// DocumentOpenError 和 ModelUnavailableError 原样返回，失败时不返回部分结果
func (o *Orchestrator) Extract(ctx context.Context, path string) (*types.ExtractedResume, error) {
	if err := o.ensureReady(); err != nil {
		return nil, err
	}
	text, err := o.reader.ReadText(ctx, path)
	if err != nil {
		return nil, err
	}
	return o.extract(path, text)
}

// ExtractFromReader 与 Extract 相同，但文档来自内存或网络流
func (o *Orchestrator) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (*types.ExtractedResume, error) {
	if err := o.ensureReady(); err != nil {
		return nil, err
	}
	text, err := o.reader.ReadTextFromReader(ctx, reader, uri)
	if err != nil {
		return nil, err
	}
	return o.extract(uri, text)
}

// 模型缺失时在打开文档前就失败
func (o *Orchestrator) ensureReady() error {
	if o.names.recognizer == nil {
		return types.NewModelUnavailableError("orchestrator", fmt.Errorf("未注入实体识别模型"))
	}
	if o.reader == nil {
		return fmt.Errorf("未配置文档读取器")
	}
	return nil
}

func (o *Orchestrator) extract(uri, text string) (*types.ExtractedResume, error) {
	start := time.Now()

	name, err := o.names.Extract(text)
	if err != nil {
		return nil, err
	}

	rec := &types.ExtractedResume{
		Name:           name,
		Email:          ExtractEmail(text),
		Phone:          ExtractPhone(text),
		Skills:         o.skills.Extract(text),
		Experience:     ExtractExperience(text),
		Certifications: o.certifications.Extract(text),
	}

	o.logger.Debug().
		Str("uri", uri).
		Int("text_length", len(text)).
		Bool("has_name", rec.Name != nil).
		Int("skills", len(rec.Skills)).
		Int("certifications", len(rec.Certifications)).
		Dur("elapsed", time.Since(start)).
		Msg("简历字段提取完成")
	return rec, nil
}
