package extractor

import (
	"fmt"

	"resume-extractor/internal/types"
)

// LabelPerson 人名实体标签
const LabelPerson = "PERSON"

// Entity 实体识别结果中的一个片段
type Entity struct {
	Text  string
	Label string
}

// EntityRecognizer 命名实体识别器
// 实现必须只读、可被多个提取调用并发使用
type EntityRecognizer interface {
	// Entities 按文档顺序返回识别出的实体
	Entities(text string) ([]Entity, error)
}

// NameExtractor 取第一个 PERSON 实体作为候选人姓名
type NameExtractor struct {
	recognizer EntityRecognizer
}

// NewNameExtractor 创建姓名提取器
func NewNameExtractor(recognizer EntityRecognizer) *NameExtractor {
	return &NameExtractor{recognizer: recognizer}
}

// Extract 返回第一个人名；没有人名时返回 nil
// 模型缺失时返回 ModelUnavailableError，调用方据此区分"没有姓名"和"无法分析"
func (n *NameExtractor) Extract(text string) (*string, error) {
	if n.recognizer == nil {
		return nil, types.NewModelUnavailableError("name_extractor", fmt.Errorf("未注入实体识别模型"))
	}
	entities, err := n.recognizer.Entities(text)
	if err != nil {
		return nil, err
	}
	for _, ent := range entities {
		if ent.Label == LabelPerson {
			name := ent.Text
			return &name, nil
		}
	}
	return nil, nil
}
