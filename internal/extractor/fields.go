// Package extractor 把简历文本转换成结构化字段
// 各字段提取器互相独立、无状态，由 Orchestrator 统一调度
package extractor

import (
	"regexp"
)

// RE2 的 \w \d \s 只匹配 ASCII，简历里常见的带重音字母、全角数字和不换行空格
// 都要用 Unicode 类别显式写出
var (
	// 邮箱: local-part@domain，两侧由字母、数字、下划线、点、连字符组成
	emailPattern = regexp.MustCompile(`[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+`)

	// 电话: 可选 +，数字开头，中间至少 8 个数字/空白/连字符，数字结尾
	// 任何足够长的数字串（例如证件号）都会被误判，这是已知限制
	phonePattern = regexp.MustCompile(`\+?\p{Nd}[\p{Nd}\s\v\p{Z}-]{8,}\p{Nd}`)

	// 工作年限: "<N>[+][空白](years|yrs) of experience"
	experiencePattern = regexp.MustCompile(`(?i)(\p{Nd}+)\+?[\s\v\p{Z}]?(years|yrs) of experience`)
)

// ExtractEmail 返回文本中第一个邮箱，没有则返回 nil
func ExtractEmail(text string) *string {
	return firstMatch(emailPattern, text)
}

// ExtractPhone 返回文本中第一个电话号码，没有则返回 nil
func ExtractPhone(text string) *string {
	return firstMatch(phonePattern, text)
}

// ExtractExperience 返回第一处工作年限声明，格式化为 "<N> years"
// 只取第一处匹配，后面的（如单个岗位的年限）忽略
func ExtractExperience(text string) *string {
	m := experiencePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	years := m[1] + " years"
	return &years
}

func firstMatch(re *regexp.Regexp, text string) *string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	match := text[loc[0]:loc[1]]
	return &match
}
