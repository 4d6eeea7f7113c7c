// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the
// engine.
package repository

import (
	"context"

	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// CandidateQuery carries the positive eligibility constraints for an expert
// directory search. Id sets are already leaf-expanded; name sets are matched
// by exact reference name. Empty sets mean the dimension is unconstrained.
type CandidateQuery struct {
	SpecialtyIDs   []int64
	SpecialtyNames []string

	TitleIDs   []int64
	TitleNames []string
	// IncludeUntitled admits experts with no title reference even though a
	// title constraint is present.
	IncludeUntitled bool

	RegionIDs   []int64
	RegionNames []string
}

// RuleRepository reads selection rules.
type RuleRepository interface {
	// GetByID returns the rule or apperrors.ErrNotFound. The ext argument
	// allows execution inside a transaction or on a direct connection.
	GetByID(ctx context.Context, ext sqlx.ExtContext, ruleID int64) (*domain.Rule, error)
}

// ExpertDirectoryRepository queries the expert directory owned by the
// administrative subsystem. The engine only reads it.
type ExpertDirectoryRepository interface {
	// FindCandidates returns active experts matching every constrained
	// dimension of the query, with organization and title labels joined in.
	FindCandidates(ctx context.Context, ext sqlx.ExtContext, q CandidateQuery) ([]domain.Expert, error)
}

// ReferenceRepository resolves the reference trees and name lookups the
// resolver needs.
type ReferenceRepository interface {
	// ExpandSpecialtyLeaves maps specialty ids to the ids of their leaf
	// descendants. A leaf id maps to itself; unknown ids expand to nothing.
	ExpandSpecialtyLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error)

	// ExpandTitleLeaves does the same over the title tree.
	ExpandTitleLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error)

	// ExpandRegionLeaves does the same over the region tree.
	ExpandRegionLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error)

	// ResolveOrganizationIDs maps organization names to ids by exact name.
	// Names with no match are absent from the result.
	ResolveOrganizationIDs(ctx context.Context, ext sqlx.ExtContext, names []string) (map[string]int64, error)
}

// DrawCommandRepository defines write and locking operations on draws and
// their results. All methods are expected to run within a transaction.
type DrawCommandRepository interface {
	CreateDraw(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error
	UpdateDraw(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error

	// DeleteDraws removes draws and, via cascade, their results. It returns
	// the number of draws removed.
	DeleteDraws(ctx context.Context, tx *sqlx.Tx, drawIDs []int64) (int64, error)

	// GetDrawByIDWithLock loads the draw row and acquires a row-level lock
	// ("FOR UPDATE"), serializing execute/contact/replace per draw.
	GetDrawByIDWithLock(ctx context.Context, tx *sqlx.Tx, drawID int64) (*domain.Draw, error)

	UpdateDrawStatus(ctx context.Context, tx *sqlx.Tx, drawID int64, status domain.DrawStatus) error

	// MarkExecuted records the method actually used and the pool counters
	// alongside the status transition to scheduled.
	MarkExecuted(ctx context.Context, tx *sqlx.Tx, drawID int64, method string, eligibleCount, totalCount int) error

	// InsertResults writes a full result batch in one statement.
	InsertResults(ctx context.Context, tx *sqlx.Tx, results []domain.DrawResult) error

	// DeleteResults removes every result of a draw, returning the count.
	DeleteResults(ctx context.Context, tx *sqlx.Tx, drawID int64) (int64, error)

	DeleteResult(ctx context.Context, tx *sqlx.Tx, resultID int64) error

	UpdateContactStatus(ctx context.Context, tx *sqlx.Tx, resultID int64, status domain.ContactStatus) error

	// ResetContactStatuses sets every result of the draw back to pending.
	ResetContactStatuses(ctx context.Context, tx *sqlx.Tx, drawID int64) error

	// PromoteBackup converts a backup result into a primary replacement at
	// the given ordinal with its contact status reset to pending.
	PromoteBackup(ctx context.Context, tx *sqlx.Tx, resultID int64, ordinal int) error
}

// DrawQueryRepository defines read-only operations on draws and results.
type DrawQueryRepository interface {
	GetDrawByID(ctx context.Context, ext sqlx.ExtContext, drawID int64) (*domain.Draw, error)

	ListDraws(ctx context.Context, params domain.PageParams) ([]domain.Draw, int, error)

	// GetResultByID returns the result scoped to the draw or ErrNotFound.
	GetResultByID(ctx context.Context, ext sqlx.ExtContext, drawID, resultID int64) (*domain.DrawResult, error)

	// ListResults returns every result of the draw with expert details,
	// ordered by is_backup, ordinal, id.
	ListResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) ([]domain.DrawResult, error)

	ListResultsPage(ctx context.Context, drawID int64, params domain.PageParams) ([]domain.DrawResult, int, error)

	// FirstBackup returns the lowest-ordinal backup of the draw, or nil when
	// the backup pool is empty.
	FirstBackup(ctx context.Context, tx *sqlx.Tx, drawID int64) (*domain.DrawResult, error)

	CountResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) (int, error)

	// CountAcceptedPrimary counts non-backup results with an accepted
	// contact status.
	CountAcceptedPrimary(ctx context.Context, ext sqlx.ExtContext, drawID int64) (int, error)

	// HasConfirmedResults reports whether any result of the draw has a
	// contact status other than pending.
	HasConfirmedResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) (bool, error)
}
