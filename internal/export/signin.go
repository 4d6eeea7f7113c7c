package export

import (
	"time"

	"github.com/expertpanel/draw-service/internal/domain"
)

// SignInSheet is the printable attendance document for a review session:
// draw metadata, the avoided-organization labels and a fixed-size roster.
type SignInSheet struct {
	DrawID         int64       `json:"draw_id"`
	ProjectName    string      `json:"project_name"`
	ProjectCode    string      `json:"project_code"`
	ReviewTime     *time.Time  `json:"review_time,omitempty"`
	ReviewLocation string      `json:"review_location"`
	AvoidUnits     []string    `json:"avoid_units"`
	Rows           []SignInRow `json:"rows"`
}

// SignInRow is one roster line. Rows beyond the selected experts are blank
// so the printed table always has the draw's total_count lines.
type SignInRow struct {
	Ordinal      int    `json:"ordinal"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Title        string `json:"title"`
	Role         string `json:"role"`
	Signature    string `json:"signature"`
}

// BuildSignInSheet assembles the sheet from the draw, its results and the
// parsed avoid-unit labels. The roster is padded to draw.TotalCount rows.
func BuildSignInSheet(draw *domain.Draw, results []domain.DrawResult, avoidUnits []string) *SignInSheet {
	sheet := &SignInSheet{
		DrawID:         draw.ID,
		ProjectName:    deref(draw.ProjectName),
		ProjectCode:    deref(draw.ProjectCode),
		ReviewTime:     draw.ReviewTime,
		ReviewLocation: deref(draw.ReviewLocation),
		AvoidUnits:     avoidUnits,
	}
	if sheet.AvoidUnits == nil {
		sheet.AvoidUnits = []string{}
	}

	size := draw.TotalCount
	if len(results) > size {
		size = len(results)
	}

	sheet.Rows = make([]SignInRow, size)
	for i := range sheet.Rows {
		sheet.Rows[i].Ordinal = i + 1
	}

	for i, result := range results {
		row := &sheet.Rows[i]
		row.Ordinal = result.Ordinal
		row.Role = roleLabel(result)
		if expert := result.Expert; expert != nil {
			row.Name = MaskName(expert.Name)
			row.Organization = deref(expert.OrganizationName)
			row.Title = deref(expert.TitleName)
		}
	}

	return sheet
}
