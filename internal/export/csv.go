package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/expertpanel/draw-service/internal/domain"
)

var csvHeader = []string{
	"ordinal", "role", "name", "organization", "title",
	"phone", "id_number", "contact_status",
}

// WriteResultsCSV writes one masked spreadsheet row per result. Column
// order and masking match the roster documents the administrative side
// distributes.
func WriteResultsCSV(w io.Writer, results []domain.DrawResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, result := range results {
		if err := cw.Write(resultRow(result)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

func resultRow(result domain.DrawResult) []string {
	var name, org, title, phone, idNumber string
	if expert := result.Expert; expert != nil {
		name = MaskName(expert.Name)
		org = deref(expert.OrganizationName)
		title = deref(expert.TitleName)
		phone = MaskPhone(deref(expert.Phone))
		idNumber = MaskIdentifier(deref(expert.IDNumber))
	}

	return []string{
		fmt.Sprintf("%d", result.Ordinal),
		roleLabel(result),
		name,
		org,
		title,
		phone,
		idNumber,
		string(result.ContactStatus),
	}
}

func roleLabel(result domain.DrawResult) string {
	switch {
	case result.IsBackup:
		return "backup"
	case result.IsReplacement:
		return "replacement"
	default:
		return "primary"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
