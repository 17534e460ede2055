package extractor

import "strings"

// DefaultSkillsVocabulary 默认技能词表
var DefaultSkillsVocabulary = []string{
	"Python", "Java", "AWS", "SQL", "Machine Learning", "Data Science", "Excel", "React", "C++",
}

// SkillsExtractor 基于固定词表做大小写不敏感的子串匹配
type SkillsExtractor struct {
	vocabulary []string
	lowered    []string
}

// NewSkillsExtractor 创建技能提取器，词表顺序即结果顺序
func NewSkillsExtractor(vocabulary []string) *SkillsExtractor {
	s := &SkillsExtractor{}
	seen := make(map[string]bool, len(vocabulary))
	for _, skill := range vocabulary {
		key := strings.ToLower(skill)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		s.vocabulary = append(s.vocabulary, skill)
		s.lowered = append(s.lowered, key)
	}
	return s
}

// Extract 返回文本中出现过的词表条目，按词表顺序，不重复
// 结果始终非 nil
func (s *SkillsExtractor) Extract(text string) []string {
	lowerText := strings.ToLower(text)
	found := make([]string, 0)
	for i, key := range s.lowered {
		if strings.Contains(lowerText, key) {
			found = append(found, s.vocabulary[i])
		}
	}
	return found
}
