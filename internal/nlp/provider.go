// Package nlp 负责实体识别模型的准备和使用
package nlp

import (
	"fmt"
	"os"
	"sync"
	"time"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"

	"github.com/jdkato/prose/v2"
)

// BuiltinModelName prose 内置英文模型的名称
const BuiltinModelName = "en-v2.0.0"

// ModelProvider 保证模型在进程内只加载一次
// 并发或重复调用 EnsureModel 都只会触发一次加载；加载失败不缓存，修复环境后可以重试
type ModelProvider struct {
	modelDir string

	mu    sync.Mutex
	model *prose.Model
	loads int
}

// NewModelProvider 创建模型提供者，modelDir 为空时使用 prose 内置模型
func NewModelProvider(modelDir string) *ModelProvider {
	return &ModelProvider{modelDir: modelDir}
}

// EnsureModel 返回已加载的模型，必要时先加载
func (p *ModelProvider) EnsureModel() (*prose.Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model != nil {
		return p.model, nil
	}

	start := time.Now()
	model, err := p.load()
	if err != nil {
		logger.Error().Err(err).Str("model_dir", p.modelDir).Msg("加载实体识别模型失败")
		return nil, err
	}
	p.model = model
	p.loads++

	logger.Info().
		Str("model", model.Name).
		Dur("elapsed", time.Since(start)).
		Msg("实体识别模型加载完成")
	return p.model, nil
}

// Recognizer 确保模型已加载并返回基于它的识别器
func (p *ModelProvider) Recognizer() (*ProseRecognizer, error) {
	model, err := p.EnsureModel()
	if err != nil {
		return nil, err
	}
	return NewProseRecognizer(model), nil
}

func (p *ModelProvider) load() (model *prose.Model, err error) {
	source := BuiltinModelName
	if p.modelDir != "" {
		source = p.modelDir
	}

	// prose 在模型文件缺失或损坏时会 panic
	defer func() {
		if r := recover(); r != nil {
			model = nil
			err = types.NewModelUnavailableError(source, fmt.Errorf("%v", r))
		}
	}()

	if p.modelDir == "" {
		return prose.ModelFromData(BuiltinModelName), nil
	}

	info, statErr := os.Stat(p.modelDir)
	if statErr != nil {
		return nil, types.NewModelUnavailableError(source, statErr)
	}
	if !info.IsDir() {
		return nil, types.NewModelUnavailableError(source, fmt.Errorf("%s 不是目录", p.modelDir))
	}
	return prose.ModelFromDisk(p.modelDir), nil
}
