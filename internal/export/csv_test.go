package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestWriteResultsCSV(t *testing.T) {
	results := []domain.DrawResult{
		{
			Ordinal:       1,
			ContactStatus: domain.ContactStatusAccepted,
			Expert: &domain.Expert{
				Name:             "张伟",
				Phone:            strPtr("13812345678"),
				IDNumber:         strPtr("110101199001011234"),
				OrganizationName: strPtr("市水利设计院"),
				TitleName:        strPtr("高级工程师"),
			},
		},
		{
			Ordinal:       2,
			IsReplacement: true,
			ContactStatus: domain.ContactStatusPending,
			Expert: &domain.Expert{
				Name: "李小娜",
			},
		},
		{
			Ordinal:       3,
			IsBackup:      true,
			ContactStatus: domain.ContactStatusPending,
			Expert: &domain.Expert{
				Name:  "王强",
				Phone: strPtr("1234567"),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, results))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{
		"ordinal", "role", "name", "organization", "title",
		"phone", "id_number", "contact_status",
	}, rows[0])

	assert.Equal(t, []string{
		"1", "primary", "张*", "市水利设计院", "高级工程师",
		"138****5678", "110***********1234", "accepted",
	}, rows[1])

	assert.Equal(t, []string{
		"2", "replacement", "李*娜", "", "", "", "", "pending",
	}, rows[2])

	// Short phone numbers pass through unmasked.
	assert.Equal(t, []string{
		"3", "backup", "王*", "", "", "1234567", "", "pending",
	}, rows[3])
}

func TestWriteResultsCSV_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestBuildSignInSheet(t *testing.T) {
	reviewTime := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	draw := &domain.Draw{
		ID:             12,
		ProjectName:    strPtr("道路改造评审"),
		ProjectCode:    strPtr("PRJ-2025-031"),
		ReviewTime:     &reviewTime,
		ReviewLocation: strPtr("三号会议室"),
		TotalCount:     5,
	}

	results := []domain.DrawResult{
		{
			Ordinal: 1,
			Expert: &domain.Expert{
				Name:             "张伟",
				OrganizationName: strPtr("市水利设计院"),
				TitleName:        strPtr("高级工程师"),
			},
		},
		{
			Ordinal:  4,
			IsBackup: true,
			Expert:   &domain.Expert{Name: "李小娜"},
		},
	}

	sheet := BuildSignInSheet(draw, results, []string{"市政设计公司"})

	assert.Equal(t, int64(12), sheet.DrawID)
	assert.Equal(t, "道路改造评审", sheet.ProjectName)
	assert.Equal(t, []string{"市政设计公司"}, sheet.AvoidUnits)
	require.Len(t, sheet.Rows, 5)

	assert.Equal(t, SignInRow{
		Ordinal: 1, Name: "张*", Organization: "市水利设计院",
		Title: "高级工程师", Role: "primary",
	}, sheet.Rows[0])
	assert.Equal(t, SignInRow{Ordinal: 4, Name: "李*", Role: "backup"}, sheet.Rows[1])

	// Padding rows are blank but keep sequential ordinals.
	assert.Equal(t, SignInRow{Ordinal: 3}, sheet.Rows[2])
	assert.Equal(t, SignInRow{Ordinal: 5}, sheet.Rows[4])
}

func TestBuildSignInSheet_MoreResultsThanTotal(t *testing.T) {
	draw := &domain.Draw{ID: 13, TotalCount: 1}
	results := []domain.DrawResult{
		{Ordinal: 1, Expert: &domain.Expert{Name: "张伟"}},
		{Ordinal: 2, Expert: &domain.Expert{Name: "王强"}},
	}

	sheet := BuildSignInSheet(draw, results, nil)

	require.Len(t, sheet.Rows, 2)
	assert.NotNil(t, sheet.AvoidUnits)
}
