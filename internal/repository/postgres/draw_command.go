package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type DrawCommandRepository struct {
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDrawCommandRepository(log *slog.Logger) *DrawCommandRepository {
	return &DrawCommandRepository{
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *DrawCommandRepository) CreateDraw(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error {
	const op = "internal.repository.postgres.drawcommand.CreateDraw"

	query, args, err := r.sq.Insert("draws").
		Columns(
			"rule_id", "project_name", "project_code",
			"expert_count", "backup_count", "draw_method",
			"review_time", "review_location",
			"avoid_units", "avoid_persons", "status",
		).
		Values(
			draw.RuleID, draw.ProjectName, draw.ProjectCode,
			draw.ExpertCount, draw.BackupCount, draw.DrawMethod,
			draw.ReviewTime, draw.ReviewLocation,
			draw.AvoidUnits, draw.AvoidPersons, draw.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	row := tx.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&draw.ID, &draw.CreatedAt, &draw.UpdatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%s: %w: rule reference", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *DrawCommandRepository) UpdateDraw(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error {
	const op = "internal.repository.postgres.drawcommand.UpdateDraw"

	query, args, err := r.sq.Update("draws").
		Set("rule_id", draw.RuleID).
		Set("project_name", draw.ProjectName).
		Set("project_code", draw.ProjectCode).
		Set("expert_count", draw.ExpertCount).
		Set("backup_count", draw.BackupCount).
		Set("draw_method", draw.DrawMethod).
		Set("review_time", draw.ReviewTime).
		Set("review_location", draw.ReviewLocation).
		Set("avoid_units", draw.AvoidUnits).
		Set("avoid_persons", draw.AvoidPersons).
		Set("status", draw.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": draw.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: draw with id '%d'", op, apperrors.ErrNotFound, draw.ID)
	}

	return nil
}

func (r *DrawCommandRepository) DeleteDraws(ctx context.Context, tx *sqlx.Tx, drawIDs []int64) (int64, error) {
	const op = "internal.repository.postgres.drawcommand.DeleteDraws"

	if len(drawIDs) == 0 {
		return 0, nil
	}

	query, args, err := r.sq.Delete("draws").
		Where(sq.Expr("id = ANY(?)", pq.Array(drawIDs))).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return deleted, nil
}

func (r *DrawCommandRepository) GetDrawByIDWithLock(ctx context.Context, tx *sqlx.Tx, drawID int64) (*domain.Draw, error) {
	const op = "internal.repository.postgres.drawcommand.GetDrawByIDWithLock"

	query, args, err := r.sq.Select(drawColumns...).
		From("draws").
		Where(sq.Eq{"id": drawID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var draw domain.Draw
	if err := tx.GetContext(ctx, &draw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: draw with id '%d'", op, apperrors.ErrNotFound, drawID)
		}

		return nil, fmt.Errorf("%s: failed to get draw with lock: %w", op, err)
	}

	return &draw, nil
}

func (r *DrawCommandRepository) UpdateDrawStatus(ctx context.Context, tx *sqlx.Tx, drawID int64, status domain.DrawStatus) error {
	const op = "internal.repository.postgres.drawcommand.UpdateDrawStatus"

	query, args, err := r.sq.Update("draws").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": drawID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: draw with id '%d'", op, apperrors.ErrNotFound, drawID)
	}

	return nil
}

func (r *DrawCommandRepository) MarkExecuted(ctx context.Context, tx *sqlx.Tx, drawID int64, method string, eligibleCount, totalCount int) error {
	const op = "internal.repository.postgres.drawcommand.MarkExecuted"

	query, args, err := r.sq.Update("draws").
		Set("status", domain.DrawStatusScheduled).
		Set("draw_method", method).
		Set("eligible_count", eligibleCount).
		Set("total_count", totalCount).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": drawID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: draw with id '%d'", op, apperrors.ErrNotFound, drawID)
	}

	return nil
}

func (r *DrawCommandRepository) InsertResults(ctx context.Context, tx *sqlx.Tx, results []domain.DrawResult) error {
	const op = "internal.repository.postgres.drawcommand.InsertResults"

	if len(results) == 0 {
		return nil
	}

	insertBuilder := r.sq.Insert("draw_results").
		Columns("draw_id", "expert_id", "is_backup", "is_replacement", "ordinal", "contact_status")

	for _, result := range results {
		insertBuilder = insertBuilder.Values(
			result.DrawID, result.ExpertID,
			result.IsBackup, result.IsReplacement,
			result.Ordinal, result.ContactStatus,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("%s: %w: duplicate result batch", op, apperrors.ErrConflict)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *DrawCommandRepository) DeleteResults(ctx context.Context, tx *sqlx.Tx, drawID int64) (int64, error) {
	const op = "internal.repository.postgres.drawcommand.DeleteResults"

	query, args, err := r.sq.Delete("draw_results").
		Where(sq.Eq{"draw_id": drawID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return deleted, nil
}

func (r *DrawCommandRepository) DeleteResult(ctx context.Context, tx *sqlx.Tx, resultID int64) error {
	const op = "internal.repository.postgres.drawcommand.DeleteResult"

	query, args, err := r.sq.Delete("draw_results").
		Where(sq.Eq{"id": resultID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: result with id '%d'", op, apperrors.ErrNotFound, resultID)
	}

	return nil
}

func (r *DrawCommandRepository) UpdateContactStatus(ctx context.Context, tx *sqlx.Tx, resultID int64, status domain.ContactStatus) error {
	const op = "internal.repository.postgres.drawcommand.UpdateContactStatus"

	query, args, err := r.sq.Update("draw_results").
		Set("contact_status", status).
		Where(sq.Eq{"id": resultID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: result with id '%d'", op, apperrors.ErrNotFound, resultID)
	}

	return nil
}

func (r *DrawCommandRepository) ResetContactStatuses(ctx context.Context, tx *sqlx.Tx, drawID int64) error {
	const op = "internal.repository.postgres.drawcommand.ResetContactStatuses"

	query, args, err := r.sq.Update("draw_results").
		Set("contact_status", domain.ContactStatusPending).
		Where(sq.Eq{"draw_id": drawID}).
		Where(sq.NotEq{"contact_status": domain.ContactStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return nil
}

func (r *DrawCommandRepository) PromoteBackup(ctx context.Context, tx *sqlx.Tx, resultID int64, ordinal int) error {
	const op = "internal.repository.postgres.drawcommand.PromoteBackup"

	query, args, err := r.sq.Update("draw_results").
		Set("is_backup", false).
		Set("is_replacement", true).
		Set("ordinal", ordinal).
		Set("contact_status", domain.ContactStatusPending).
		Where(sq.Eq{"id": resultID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: result with id '%d'", op, apperrors.ErrNotFound, resultID)
	}

	return nil
}
