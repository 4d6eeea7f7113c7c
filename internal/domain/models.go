package domain

import "time"

// DrawStatus is the lifecycle state of a draw application.
type DrawStatus string

const (
	DrawStatusPending   DrawStatus = "pending"
	DrawStatusScheduled DrawStatus = "scheduled"
	DrawStatusCompleted DrawStatus = "completed"
	DrawStatusCancelled DrawStatus = "cancelled"
)

// ContactStatus is the confirmation outcome for a primary draw result.
type ContactStatus string

const (
	ContactStatusPending  ContactStatus = "pending"
	ContactStatusAccepted ContactStatus = "accepted"
	ContactStatusRejected ContactStatus = "rejected"
)

// Supported draw methods.
const (
	DrawMethodRandom  = "random"
	DrawMethodLottery = "lottery"
)

// Rule is the declarative selection criteria for a draw. The Specialties,
// Titles and Regions fields are free-text term lists whose tokens are either
// numeric reference ids or names; they are interpreted by the term parser.
type Rule struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Specialties string `db:"specialties"`
	Titles      string `db:"titles"`
	Regions     string `db:"regions"`
	DrawMethod  string `db:"draw_method"`
	IsActive    bool   `db:"is_active"`
}

// Draw is one staffing request to be filled with experts.
type Draw struct {
	ID             int64      `db:"id"`
	RuleID         *int64     `db:"rule_id"`
	ProjectName    *string    `db:"project_name"`
	ProjectCode    *string    `db:"project_code"`
	ExpertCount    int        `db:"expert_count"`
	BackupCount    int        `db:"backup_count"`
	EligibleCount  int        `db:"eligible_count"`
	TotalCount     int        `db:"total_count"`
	DrawMethod     string     `db:"draw_method"`
	ReviewTime     *time.Time `db:"review_time"`
	ReviewLocation *string    `db:"review_location"`
	AvoidUnits     string     `db:"avoid_units"`
	AvoidPersons   string     `db:"avoid_persons"`
	Status         DrawStatus `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Expert is a reviewer in the directory. Reference fields are normalized
// ids; the display labels are joined in at read time.
type Expert struct {
	ID               int64   `db:"id"`
	Name             string  `db:"name"`
	Gender           *string `db:"gender"`
	Phone            *string `db:"phone"`
	Email            *string `db:"email"`
	IDNumber         *string `db:"id_number"`
	OrganizationID   *int64  `db:"organization_id"`
	OrganizationName *string `db:"organization_name"`
	RegionID         *int64  `db:"region_id"`
	TitleID          *int64  `db:"title_id"`
	TitleName        *string `db:"title_name"`
	IsActive         bool    `db:"is_active"`
}

// DrawResult is one assignment of an expert to a draw slot. A result batch
// is written atomically by a single execution; (DrawID, ExpertID) is unique.
type DrawResult struct {
	ID            int64         `db:"id"`
	DrawID        int64         `db:"draw_id"`
	ExpertID      int64         `db:"expert_id"`
	IsBackup      bool          `db:"is_backup"`
	IsReplacement bool          `db:"is_replacement"`
	Ordinal       int           `db:"ordinal"`
	ContactStatus ContactStatus `db:"contact_status"`
	CreatedAt     time.Time     `db:"created_at"`

	Expert *Expert `db:"-"`
}

// PageParams carries pagination, keyword filtering and sorting for list
// queries.
type PageParams struct {
	Keyword   string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Normalize clamps page parameters to sane defaults.
func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 200 {
		p.PageSize = 20
	}
	if p.SortOrder != "desc" {
		p.SortOrder = "asc"
	}
}
