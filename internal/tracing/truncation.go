package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxFilenameLength 上传文件名最大长度
	MaxFilenameLength = 120
)

// piiKeywords 属性名包含这些片段时，值按个人信息掩码
var piiKeywords = []string{"email", "phone", "name", "address", "姓名", "电话", "邮箱"}

// SafeAttributeValue 返回可以写进 span 的属性值
// 属性名涉及个人信息时掩码，否则截断到 maxLength
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiKeywords {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 只保留首尾字符
// 两个字符保留第一个，三到四个保留首尾各一个，更长的保留首尾各两个
func MaskPII(value string) string {
	runes := []rune(value)
	n := len(runes)

	switch {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// TruncateString 超长时保留首尾，中间用 ... 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeFilename 上传文件名截断后再写入 span
func SafeFilename(name string) string {
	return TruncateString(name, MaxFilenameLength)
}
