package http

import "time"

type applyDrawRequest struct {
	RuleID         *int64     `json:"rule_id"`
	ProjectName    *string    `json:"project_name" validate:"omitempty,max=255"`
	ProjectCode    *string    `json:"project_code" validate:"omitempty,max=100"`
	ExpertCount    int        `json:"expert_count" validate:"required,min=1,max=100"`
	BackupCount    int        `json:"backup_count" validate:"min=0,max=100"`
	DrawMethod     string     `json:"draw_method" validate:"draw_method"`
	ReviewTime     *time.Time `json:"review_time"`
	ReviewLocation *string    `json:"review_location" validate:"omitempty,max=255"`
	AvoidUnits     string     `json:"avoid_units" validate:"max=2000"`
	AvoidPersons   string     `json:"avoid_persons" validate:"max=2000"`
}

type updateDrawRequest struct {
	RuleID         *int64     `json:"rule_id"`
	ProjectName    *string    `json:"project_name" validate:"omitempty,max=255"`
	ProjectCode    *string    `json:"project_code" validate:"omitempty,max=100"`
	ExpertCount    *int       `json:"expert_count" validate:"omitempty,min=1,max=100"`
	BackupCount    *int       `json:"backup_count" validate:"omitempty,min=0,max=100"`
	DrawMethod     *string    `json:"draw_method" validate:"omitempty,draw_method"`
	ReviewTime     *time.Time `json:"review_time"`
	ReviewLocation *string    `json:"review_location" validate:"omitempty,max=255"`
	AvoidUnits     *string    `json:"avoid_units" validate:"omitempty,max=2000"`
	AvoidPersons   *string    `json:"avoid_persons" validate:"omitempty,max=2000"`
}

type batchDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
}

type recordContactRequest struct {
	ContactStatus string `json:"contact_status" validate:"required,contact_status"`
	AutoReplace   bool   `json:"auto_replace"`
}
