package report

import (
	"bytes"
	"testing"
	"time"

	"resume-extractor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func str(s string) *string { return &s }

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		rec  *types.ExtractedResume
		want string
	}{
		{"nil 记录", nil, NoSummaryText},
		{"全部为空", &types.ExtractedResume{Skills: []string{}, Certifications: []string{}}, NoSummaryText},
		{
			"只有邮箱和电话",
			&types.ExtractedResume{Email: str("a@b.com"), Phone: str("+1 555 123 4567"), Skills: []string{}, Certifications: []string{}},
			NoSummaryText,
		},
		{
			"完整记录",
			&types.ExtractedResume{
				Name:           str("Jane Doe"),
				Skills:         []string{"Python", "SQL"},
				Experience:     str("7 years"),
				Certifications: []string{"AWS Certified Developer", "Coursera ML"},
			},
			"Candidate Name: Jane Doe\n\nSkills: Python, SQL\n\nExperience: 7 years\n\nCertifications:\n- AWS Certified Developer\n- Coursera ML",
		},
		{
			"只有技能",
			&types.ExtractedResume{Skills: []string{"Go"}, Certifications: []string{}},
			"Skills: Go",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.rec))
		})
	}
}

func TestExportXLSX(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	records := []*types.StoredResult{
		{
			SubmissionUUID:   "u1",
			OriginalFilename: "jane.pdf",
			Status:           types.StatusExtracted,
			Result: &types.ExtractedResume{
				Name:           str("Jane Doe"),
				Email:          str("jane@example.com"),
				Skills:         []string{"Python", "SQL"},
				Experience:     str("7 years"),
				Certifications: []string{"AWS Certified Developer"},
			},
			CreatedAt: created,
		},
		nil,
		{
			SubmissionUUID:   "u2",
			OriginalFilename: "broken.pdf",
			Status:           types.StatusFailed,
			ErrorKind:        "document_open",
			ErrorMessage:     "bad header",
		},
	}

	data, err := ExportXLSX(records)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3, "表头 + 两条非 nil 记录")
	assert.Equal(t, headers, rows[0])

	assert.Equal(t, "u1", rows[1][0])
	assert.Equal(t, "EXTRACTED", rows[1][2])
	assert.Equal(t, "Jane Doe", rows[1][3])
	assert.Equal(t, "jane@example.com", rows[1][4])
	assert.Equal(t, "", rows[1][5])
	assert.Equal(t, "Python, SQL", rows[1][6])
	assert.Equal(t, "7 years", rows[1][7])
	assert.Equal(t, "2024-03-01T09:30:00Z", rows[1][10])

	assert.Equal(t, "u2", rows[2][0])
	assert.Equal(t, "FAILED", rows[2][2])
	assert.Equal(t, "document_open: bad header", rows[2][9])
}

func TestExportXLSXEmpty(t *testing.T) {
	data, err := ExportXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
