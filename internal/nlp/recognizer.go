package nlp

import (
	"fmt"

	"resume-extractor/internal/extractor"
	"resume-extractor/internal/types"

	"github.com/jdkato/prose/v2"
)

// ProseRecognizer 基于 prose 模型的实体识别器
type ProseRecognizer struct {
	model *prose.Model
}

var _ extractor.EntityRecognizer = (*ProseRecognizer)(nil)

// NewProseRecognizer 使用已加载的模型创建识别器
func NewProseRecognizer(model *prose.Model) *ProseRecognizer {
	return &ProseRecognizer{model: model}
}

// Entities 对全文做分词、词性标注和实体识别，按文档顺序返回实体
func (r *ProseRecognizer) Entities(text string) ([]extractor.Entity, error) {
	if r == nil || r.model == nil {
		return nil, types.NewModelUnavailableError("prose", fmt.Errorf("模型未加载"))
	}

	doc, err := prose.NewDocument(text, prose.UsingModel(r.model))
	if err != nil {
		return nil, fmt.Errorf("prose 实体识别失败: %w", err)
	}

	ents := doc.Entities()
	out := make([]extractor.Entity, 0, len(ents))
	for _, ent := range ents {
		out = append(out, extractor.Entity{Text: ent.Text, Label: ent.Label})
	}
	return out, nil
}
