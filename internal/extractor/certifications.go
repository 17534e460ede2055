package extractor

import "strings"

// DefaultCertificationKeywords 默认认证关键词
var DefaultCertificationKeywords = []string{
	"certified", "certificate", "certification", "AWS Certified",
	"Google Cloud Certified", "Microsoft Certified", "Coursera", "Udemy", "edX",
}

// CertificationExtractor 按行匹配认证关键词
type CertificationExtractor struct {
	keywords []string
}

// NewCertificationExtractor 创建认证提取器，空关键词会被忽略
func NewCertificationExtractor(keywords []string) *CertificationExtractor {
	c := &CertificationExtractor{}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		c.keywords = append(c.keywords, strings.ToLower(kw))
	}
	return c
}

// Extract 返回所有包含任一关键词的行（去除首尾空白），保持文档顺序
// 重复的行会重复出现；没有命中时返回空切片而不是 nil
func (c *CertificationExtractor) Extract(text string) []string {
	certifications := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		lowerLine := strings.ToLower(line)
		for _, kw := range c.keywords {
			if strings.Contains(lowerLine, kw) {
				certifications = append(certifications, strings.TrimSpace(line))
				break
			}
		}
	}
	return certifications
}
