package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/repository"
	"github.com/expertpanel/draw-service/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

// CreateDrawParams carries the fields of a new draw application.
type CreateDrawParams struct {
	RuleID         *int64
	ProjectName    *string
	ProjectCode    *string
	ExpertCount    int
	BackupCount    int
	DrawMethod     string
	ReviewTime     *time.Time
	ReviewLocation *string
	AvoidUnits     string
	AvoidPersons   string
}

// UpdateDrawParams carries a partial draw update; nil fields are untouched.
type UpdateDrawParams struct {
	RuleID         *int64
	RuleIDSet      bool
	ProjectName    *string
	ProjectCode    *string
	ExpertCount    *int
	BackupCount    *int
	DrawMethod     *string
	ReviewTime     *time.Time
	ReviewLocation *string
	AvoidUnits     *string
	AvoidPersons   *string
}

// DrawService is the engine's write-side contract: draw lifecycle plus the
// execute/contact/replace operations.
type DrawService interface {
	CreateDraw(ctx context.Context, params CreateDrawParams) (*domain.Draw, error)
	GetDraw(ctx context.Context, drawID int64) (*domain.Draw, error)
	ListDraws(ctx context.Context, params domain.PageParams) ([]domain.Draw, int, error)
	UpdateDraw(ctx context.Context, drawID int64, params UpdateDrawParams) (*domain.Draw, error)
	DeleteDraws(ctx context.Context, drawIDs []int64) (int64, error)
	CancelDraw(ctx context.Context, drawID int64) (*domain.Draw, error)

	Execute(ctx context.Context, drawID int64) ([]domain.DrawResult, error)
	RecordContact(ctx context.Context, drawID, resultID int64, status domain.ContactStatus, autoReplace bool) ([]domain.DrawResult, error)
	Replace(ctx context.Context, drawID, resultID int64) ([]domain.DrawResult, error)
}

type DrawServiceImpl struct {
	db        Transactor
	log       *slog.Logger
	drawCmd   repository.DrawCommandRepository
	drawQuery repository.DrawQueryRepository
	rules     repository.RuleRepository
	resolver  Resolver
	picker    Picker
}

func NewDrawService(
	db Transactor,
	log *slog.Logger,
	drawCmd repository.DrawCommandRepository,
	drawQuery repository.DrawQueryRepository,
	rules repository.RuleRepository,
	resolver Resolver,
	picker Picker,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		db:        db,
		log:       log,
		drawCmd:   drawCmd,
		drawQuery: drawQuery,
		rules:     rules,
		resolver:  resolver,
		picker:    picker,
	}
}

func (s *DrawServiceImpl) CreateDraw(ctx context.Context, params CreateDrawParams) (*domain.Draw, error) {
	const op = "internal.service.draw.CreateDraw"
	log := s.log.With(slog.String("op", op))

	draw := &domain.Draw{
		RuleID:         params.RuleID,
		ProjectName:    params.ProjectName,
		ProjectCode:    params.ProjectCode,
		ExpertCount:    params.ExpertCount,
		BackupCount:    params.BackupCount,
		DrawMethod:     params.DrawMethod,
		ReviewTime:     params.ReviewTime,
		ReviewLocation: params.ReviewLocation,
		AvoidUnits:     params.AvoidUnits,
		AvoidPersons:   params.AvoidPersons,
		Status:         domain.DrawStatusPending,
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if params.RuleID != nil {
			if _, err := s.rules.GetByID(ctx, tx, *params.RuleID); err != nil {
				return err
			}
		}

		return s.drawCmd.CreateDraw(ctx, tx, draw)
	})
	if err != nil {
		return nil, err
	}

	log.Info("draw created", slog.Int64("draw_id", draw.ID))

	return draw, nil
}

func (s *DrawServiceImpl) GetDraw(ctx context.Context, drawID int64) (*domain.Draw, error) {
	return s.drawQuery.GetDrawByID(ctx, nil, drawID)
}

func (s *DrawServiceImpl) ListDraws(ctx context.Context, params domain.PageParams) ([]domain.Draw, int, error) {
	return s.drawQuery.ListDraws(ctx, params)
}

// UpdateDraw applies a partial edit. Any change to the rule reference,
// quotas, method or avoidance lists invalidates existing results: they are
// deleted and the draw drops back to pending unless it is cancelled.
func (s *DrawServiceImpl) UpdateDraw(ctx context.Context, drawID int64, params UpdateDrawParams) (*domain.Draw, error) {
	const op = "internal.service.draw.UpdateDraw"
	log := s.log.With(slog.String("op", op), slog.Int64("draw_id", drawID))

	var updated *domain.Draw

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		draw, err := s.drawCmd.GetDrawByIDWithLock(ctx, tx, drawID)
		if err != nil {
			return err
		}

		invalidates := false

		if params.RuleIDSet {
			if params.RuleID != nil {
				if _, err := s.rules.GetByID(ctx, tx, *params.RuleID); err != nil {
					return err
				}
			}
			if !int64PtrEqual(draw.RuleID, params.RuleID) {
				draw.RuleID = params.RuleID
				invalidates = true
			}
		}
		if params.ExpertCount != nil && *params.ExpertCount != draw.ExpertCount {
			draw.ExpertCount = *params.ExpertCount
			invalidates = true
		}
		if params.BackupCount != nil && *params.BackupCount != draw.BackupCount {
			draw.BackupCount = *params.BackupCount
			invalidates = true
		}
		if params.DrawMethod != nil && *params.DrawMethod != draw.DrawMethod {
			draw.DrawMethod = *params.DrawMethod
			invalidates = true
		}
		if params.AvoidUnits != nil && *params.AvoidUnits != draw.AvoidUnits {
			draw.AvoidUnits = *params.AvoidUnits
			invalidates = true
		}
		if params.AvoidPersons != nil && *params.AvoidPersons != draw.AvoidPersons {
			draw.AvoidPersons = *params.AvoidPersons
			invalidates = true
		}

		if params.ProjectName != nil {
			draw.ProjectName = params.ProjectName
		}
		if params.ProjectCode != nil {
			draw.ProjectCode = params.ProjectCode
		}
		if params.ReviewTime != nil {
			draw.ReviewTime = params.ReviewTime
		}
		if params.ReviewLocation != nil {
			draw.ReviewLocation = params.ReviewLocation
		}

		if invalidates {
			deleted, err := s.drawCmd.DeleteResults(ctx, tx, drawID)
			if err != nil {
				return err
			}
			if draw.Status != domain.DrawStatusCancelled {
				draw.Status = domain.DrawStatusPending
			}
			if deleted > 0 {
				log.Info("existing results invalidated", slog.Int64("deleted", deleted))
			}
		}

		if err := s.drawCmd.UpdateDraw(ctx, tx, draw); err != nil {
			return err
		}

		updated = draw

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("draw updated")

	return updated, nil
}

func (s *DrawServiceImpl) DeleteDraws(ctx context.Context, drawIDs []int64) (int64, error) {
	const op = "internal.service.draw.DeleteDraws"

	var deleted int64

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		var err error
		deleted, err = s.drawCmd.DeleteDraws(ctx, tx, drawIDs)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("draws deleted", slog.String("op", op), slog.Int64("count", deleted))

	return deleted, nil
}

// CancelDraw moves the draw to its terminal state. Cancelling an already
// cancelled draw is a no-op.
func (s *DrawServiceImpl) CancelDraw(ctx context.Context, drawID int64) (*domain.Draw, error) {
	const op = "internal.service.draw.CancelDraw"

	var cancelled *domain.Draw

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		draw, err := s.drawCmd.GetDrawByIDWithLock(ctx, tx, drawID)
		if err != nil {
			return err
		}

		if draw.Status != domain.DrawStatusCancelled {
			draw.Status = domain.DrawStatusCancelled
			if err := s.drawCmd.UpdateDrawStatus(ctx, tx, drawID, domain.DrawStatusCancelled); err != nil {
				return err
			}
		}

		cancelled = draw

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("draw cancelled", slog.String("op", op), slog.Int64("draw_id", drawID))

	return cancelled, nil
}

// Execute runs the draw. On a fresh draw it resolves candidates, selects
// primary plus backup experts and persists the full batch atomically. On a
// draw that already holds results it never re-rolls: with no confirmed
// contacts it re-affirms the scheduled state, otherwise it recomputes the
// completion status from the confirmations on record.
func (s *DrawServiceImpl) Execute(ctx context.Context, drawID int64) ([]domain.DrawResult, error) {
	const op = "internal.service.draw.Execute"
	log := s.log.With(slog.String("op", op), slog.Int64("draw_id", drawID))

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		draw, err := s.drawCmd.GetDrawByIDWithLock(ctx, tx, drawID)
		if err != nil {
			return err
		}

		if draw.Status == domain.DrawStatusCancelled {
			return apperrors.ErrDrawCancelled
		}

		existing, err := s.drawQuery.CountResults(ctx, tx, drawID)
		if err != nil {
			return err
		}

		if existing > 0 {
			return s.reaffirm(ctx, tx, draw, log)
		}

		return s.executeFresh(ctx, tx, draw, log)
	})
	if err != nil {
		return nil, err
	}

	return s.drawQuery.ListResults(ctx, nil, drawID)
}

// reaffirm handles re-execution of a draw that already has a result batch.
func (s *DrawServiceImpl) reaffirm(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw, log *slog.Logger) error {
	confirmed, err := s.drawQuery.HasConfirmedResults(ctx, tx, draw.ID)
	if err != nil {
		return err
	}

	if confirmed {
		log.Info("results already confirmed, recomputing completion")
		return s.recomputeCompletion(ctx, tx, draw)
	}

	if err := s.drawCmd.ResetContactStatuses(ctx, tx, draw.ID); err != nil {
		return err
	}
	if draw.Status != domain.DrawStatusScheduled {
		if err := s.drawCmd.UpdateDrawStatus(ctx, tx, draw.ID, domain.DrawStatusScheduled); err != nil {
			return err
		}
	}

	log.Info("execute is a no-op, existing selection kept")

	return nil
}

func (s *DrawServiceImpl) executeFresh(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw, log *slog.Logger) error {
	if draw.RuleID == nil {
		return fmt.Errorf("%w: draw has no rule", apperrors.ErrValidation)
	}

	rule, err := s.rules.GetByID(ctx, tx, *draw.RuleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: rule '%d' does not exist", apperrors.ErrValidation, *draw.RuleID)
		}
		return err
	}

	candidates, err := s.resolver.Resolve(ctx, tx, rule, draw)
	if err != nil {
		return err
	}

	method := resolveDrawMethod(draw, rule)
	totalNeeded := draw.ExpertCount + draw.BackupCount

	chosen, err := s.picker.Pick(candidates, totalNeeded, method)
	if err != nil {
		return err
	}

	results := make([]domain.DrawResult, len(chosen))
	for i, expert := range chosen {
		results[i] = domain.DrawResult{
			DrawID:        draw.ID,
			ExpertID:      expert.ID,
			IsBackup:      i >= draw.ExpertCount,
			Ordinal:       i + 1,
			ContactStatus: domain.ContactStatusPending,
		}
	}

	if err := s.drawCmd.InsertResults(ctx, tx, results); err != nil {
		return err
	}
	if err := s.drawCmd.MarkExecuted(ctx, tx, draw.ID, method, len(candidates), len(chosen)); err != nil {
		return err
	}

	log.Info("draw executed",
		slog.String("method", method),
		slog.Int("eligible", len(candidates)),
		slog.Int("selected", len(chosen)),
	)

	return nil
}

// RecordContact stores the confirmation outcome of a primary result. A
// rejection with autoReplace immediately promotes the first backup instead
// of leaving the slot rejected.
func (s *DrawServiceImpl) RecordContact(ctx context.Context, drawID, resultID int64, status domain.ContactStatus, autoReplace bool) ([]domain.DrawResult, error) {
	const op = "internal.service.draw.RecordContact"
	log := s.log.With(slog.String("op", op), slog.Int64("draw_id", drawID), slog.Int64("result_id", resultID))

	if status != domain.ContactStatusAccepted && status != domain.ContactStatusRejected {
		return nil, fmt.Errorf("%w: contact status must be accepted or rejected", apperrors.ErrValidation)
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		draw, err := s.drawCmd.GetDrawByIDWithLock(ctx, tx, drawID)
		if err != nil {
			return err
		}

		if draw.Status == domain.DrawStatusCancelled {
			return apperrors.ErrDrawCancelled
		}

		result, err := s.drawQuery.GetResultByID(ctx, tx, drawID, resultID)
		if err != nil {
			return err
		}

		if result.IsBackup {
			return apperrors.ErrConfirmBackup
		}

		if status == domain.ContactStatusRejected && autoReplace {
			if err := s.replaceLocked(ctx, tx, draw, result, log); err != nil {
				return err
			}
		} else {
			if err := s.drawCmd.UpdateContactStatus(ctx, tx, resultID, status); err != nil {
				return err
			}
		}

		return s.recomputeCompletion(ctx, tx, draw)
	})
	if err != nil {
		return nil, err
	}

	log.Info("contact outcome recorded", slog.String("status", string(status)))

	return s.drawQuery.ListResults(ctx, nil, drawID)
}

// Replace promotes the lowest-ordinal backup into the slot of a primary
// result.
func (s *DrawServiceImpl) Replace(ctx context.Context, drawID, resultID int64) ([]domain.DrawResult, error) {
	const op = "internal.service.draw.Replace"
	log := s.log.With(slog.String("op", op), slog.Int64("draw_id", drawID), slog.Int64("result_id", resultID))

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		draw, err := s.drawCmd.GetDrawByIDWithLock(ctx, tx, drawID)
		if err != nil {
			return err
		}

		if draw.Status == domain.DrawStatusCancelled {
			return apperrors.ErrDrawCancelled
		}

		target, err := s.drawQuery.GetResultByID(ctx, tx, drawID, resultID)
		if err != nil {
			return err
		}

		if err := s.replaceLocked(ctx, tx, draw, target, log); err != nil {
			return err
		}

		return s.recomputeCompletion(ctx, tx, draw)
	})
	if err != nil {
		return nil, err
	}

	return s.drawQuery.ListResults(ctx, nil, drawID)
}

// replaceLocked swaps a primary result for the first backup inside the
// caller's transaction.
func (s *DrawServiceImpl) replaceLocked(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw, target *domain.DrawResult, log *slog.Logger) error {
	if target.IsBackup {
		return apperrors.ErrReplaceBackup
	}

	backup, err := s.drawQuery.FirstBackup(ctx, tx, draw.ID)
	if err != nil {
		return err
	}
	if backup == nil {
		return apperrors.ErrNoBackupAvailable
	}

	if err := s.drawCmd.DeleteResult(ctx, tx, target.ID); err != nil {
		return err
	}
	if err := s.drawCmd.PromoteBackup(ctx, tx, backup.ID, target.Ordinal); err != nil {
		return err
	}

	log.Info("backup promoted",
		slog.Int64("replaced_result_id", target.ID),
		slog.Int64("backup_result_id", backup.ID),
		slog.Int("ordinal", target.Ordinal),
	)

	return nil
}

// recomputeCompletion re-evaluates the draw status after a confirmation or
// replacement: completed when enough primaries are accepted, scheduled
// otherwise. Cancelled draws are terminal and skipped.
func (s *DrawServiceImpl) recomputeCompletion(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error {
	if draw.Status == domain.DrawStatusCancelled {
		return nil
	}

	accepted, err := s.drawQuery.CountAcceptedPrimary(ctx, tx, draw.ID)
	if err != nil {
		return err
	}

	next := domain.DrawStatusScheduled
	if accepted >= draw.ExpertCount {
		next = domain.DrawStatusCompleted
	}

	if next == draw.Status {
		return nil
	}

	draw.Status = next

	return s.drawCmd.UpdateDrawStatus(ctx, tx, draw.ID, next)
}

// resolveDrawMethod prefers the draw-level method, falls back to the rule,
// then to random.
func resolveDrawMethod(draw *domain.Draw, rule *domain.Rule) string {
	if draw.DrawMethod != "" {
		return draw.DrawMethod
	}
	if rule != nil && rule.DrawMethod != "" {
		return rule.DrawMethod
	}
	return domain.DrawMethodRandom
}

func (s *DrawServiceImpl) transaction(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Error("failed to rollback transaction", sl.Err(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
