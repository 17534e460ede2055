package report

import (
	"fmt"
	"strings"

	"resume-extractor/internal/types"
)

// NoSummaryText 所有字段都为空时的摘要
const NoSummaryText = "No summary could be generated from the extracted data."

// Summary 根据提取结果生成一段可读的文字摘要，段落之间空一行
func Summary(rec *types.ExtractedResume) string {
	if rec == nil || rec.IsEmpty() {
		return NoSummaryText
	}

	var parts []string
	if rec.Name != nil {
		parts = append(parts, fmt.Sprintf("Candidate Name: %s", *rec.Name))
	}
	if len(rec.Skills) > 0 {
		parts = append(parts, fmt.Sprintf("Skills: %s", strings.Join(rec.Skills, ", ")))
	}
	if rec.Experience != nil {
		parts = append(parts, fmt.Sprintf("Experience: %s", *rec.Experience))
	}
	if len(rec.Certifications) > 0 {
		parts = append(parts, "Certifications:\n- "+strings.Join(rec.Certifications, "\n- "))
	}
	return strings.Join(parts, "\n\n")
}
