package report

import (
	"fmt"
	"strings"
	"time"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"

	"github.com/xuri/excelize/v2"
)

// SheetName 导出工作表名
const SheetName = "Resumes"

var headers = []string{
	"Submission UUID",
	"Filename",
	"Status",
	"Name",
	"Email",
	"Phone",
	"Skills",
	"Experience",
	"Certifications",
	"Error",
	"Created At",
}

// ExportXLSX 每条提交一行，返回工作簿字节
func ExportXLSX(records []*types.StoredResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(SheetName); index == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)
	// 新建文件自带的 Sheet1 不需要
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	row := 2
	for _, r := range records {
		if r == nil {
			continue
		}
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, r.SubmissionUUID)
		write(2, r.OriginalFilename)
		write(3, string(r.Status))
		if rec := r.Result; rec != nil {
			write(4, types.StringValue(rec.Name))
			write(5, types.StringValue(rec.Email))
			write(6, types.StringValue(rec.Phone))
			write(7, strings.Join(rec.Skills, ", "))
			write(8, types.StringValue(rec.Experience))
			write(9, strings.Join(rec.Certifications, "\n"))
		}
		if r.ErrorKind != "" {
			write(10, fmt.Sprintf("%s: %s", r.ErrorKind, r.ErrorMessage))
		}
		if !r.CreatedAt.IsZero() {
			write(11, r.CreatedAt.UTC().Format(time.RFC3339))
		}
		row++
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38) // uuid
	_ = f.SetColWidth(SheetName, "B", "B", 28)
	_ = f.SetColWidth(SheetName, "C", "C", 20)
	_ = f.SetColWidth(SheetName, "D", "F", 24)
	_ = f.SetColWidth(SheetName, "G", "G", 40)
	_ = f.SetColWidth(SheetName, "H", "H", 12)
	_ = f.SetColWidth(SheetName, "I", "J", 48)
	_ = f.SetColWidth(SheetName, "K", "K", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Debug().
		Int("rows", row-2).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("导出提取结果工作簿")
	return buf.Bytes(), nil
}
