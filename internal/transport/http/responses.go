package http

import (
	"time"

	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/export"
)

type drawResponse struct {
	ID             int64             `json:"id"`
	RuleID         *int64            `json:"rule_id"`
	ProjectName    *string           `json:"project_name"`
	ProjectCode    *string           `json:"project_code"`
	ExpertCount    int               `json:"expert_count"`
	BackupCount    int               `json:"backup_count"`
	EligibleCount  int               `json:"eligible_count"`
	TotalCount     int               `json:"total_count"`
	DrawMethod     string            `json:"draw_method"`
	ReviewTime     *time.Time        `json:"review_time"`
	ReviewLocation *string           `json:"review_location"`
	AvoidUnits     string            `json:"avoid_units"`
	AvoidPersons   string            `json:"avoid_persons"`
	Status         domain.DrawStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toDrawResponse(draw *domain.Draw) drawResponse {
	return drawResponse{
		ID:             draw.ID,
		RuleID:         draw.RuleID,
		ProjectName:    draw.ProjectName,
		ProjectCode:    draw.ProjectCode,
		ExpertCount:    draw.ExpertCount,
		BackupCount:    draw.BackupCount,
		EligibleCount:  draw.EligibleCount,
		TotalCount:     draw.TotalCount,
		DrawMethod:     draw.DrawMethod,
		ReviewTime:     draw.ReviewTime,
		ReviewLocation: draw.ReviewLocation,
		AvoidUnits:     draw.AvoidUnits,
		AvoidPersons:   draw.AvoidPersons,
		Status:         draw.Status,
		CreatedAt:      draw.CreatedAt,
		UpdatedAt:      draw.UpdatedAt,
	}
}

func toDrawResponses(draws []domain.Draw) []drawResponse {
	out := make([]drawResponse, len(draws))
	for i := range draws {
		out[i] = toDrawResponse(&draws[i])
	}
	return out
}

// expertResponse carries the display fields of a selected expert. Name and
// phone are masked; the full identifier never leaves the service through
// the JSON API.
type expertResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Organization *string `json:"organization"`
	Title        *string `json:"title"`
	Phone        string  `json:"phone"`
}

type resultResponse struct {
	ID            int64                `json:"id"`
	DrawID        int64                `json:"draw_id"`
	ExpertID      int64                `json:"expert_id"`
	IsBackup      bool                 `json:"is_backup"`
	IsReplacement bool                 `json:"is_replacement"`
	Ordinal       int                  `json:"ordinal"`
	ContactStatus domain.ContactStatus `json:"contact_status"`
	Expert        *expertResponse      `json:"expert,omitempty"`
}

func toResultResponse(result domain.DrawResult) resultResponse {
	resp := resultResponse{
		ID:            result.ID,
		DrawID:        result.DrawID,
		ExpertID:      result.ExpertID,
		IsBackup:      result.IsBackup,
		IsReplacement: result.IsReplacement,
		Ordinal:       result.Ordinal,
		ContactStatus: result.ContactStatus,
	}

	if expert := result.Expert; expert != nil {
		var phone string
		if expert.Phone != nil {
			phone = export.MaskPhone(*expert.Phone)
		}

		resp.Expert = &expertResponse{
			ID:           expert.ID,
			Name:         export.MaskName(expert.Name),
			Organization: expert.OrganizationName,
			Title:        expert.TitleName,
			Phone:        phone,
		}
	}

	return resp
}

func toResultResponses(results []domain.DrawResult) []resultResponse {
	out := make([]resultResponse, len(results))
	for i, result := range results {
		out[i] = toResultResponse(result)
	}
	return out
}

type pageResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}
