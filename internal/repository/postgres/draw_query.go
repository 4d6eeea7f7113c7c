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
)

var drawColumns = []string{
	"id", "rule_id", "project_name", "project_code",
	"expert_count", "backup_count", "eligible_count", "total_count",
	"draw_method", "review_time", "review_location",
	"avoid_units", "avoid_persons", "status", "created_at", "updated_at",
}

type DrawQueryRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDrawQueryRepository(db *sqlx.DB, log *slog.Logger) *DrawQueryRepository {
	return &DrawQueryRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ext falls back to the repository's own connection when the caller is not
// inside a transaction.
func (r *DrawQueryRepository) ext(ext sqlx.ExtContext) sqlx.ExtContext {
	if ext == nil {
		return r.db
	}
	return ext
}

func (r *DrawQueryRepository) GetDrawByID(ctx context.Context, ext sqlx.ExtContext, drawID int64) (*domain.Draw, error) {
	const op = "internal.repository.postgres.drawquery.GetDrawByID"

	query, args, err := r.sq.Select(drawColumns...).
		From("draws").
		Where(sq.Eq{"id": drawID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var draw domain.Draw
	if err := sqlx.GetContext(ctx, r.ext(ext), &draw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: draw with id '%d'", op, apperrors.ErrNotFound, drawID)
		}

		return nil, fmt.Errorf("%s: failed to get draw: %w", op, err)
	}

	return &draw, nil
}

func (r *DrawQueryRepository) ListDraws(ctx context.Context, params domain.PageParams) ([]domain.Draw, int, error) {
	const op = "internal.repository.postgres.drawquery.ListDraws"

	params.Normalize()

	where := sq.And{}
	if params.Keyword != "" {
		pattern := "%" + params.Keyword + "%"
		where = append(where, sq.Or{
			sq.ILike{"project_name": pattern},
			sq.ILike{"project_code": pattern},
			sq.ILike{"review_location": pattern},
		})
	}

	countBuilder := r.sq.Select("COUNT(*)").From("draws")
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count draws: %w", op, err)
	}

	sortMap := map[string]string{
		"id":           "id",
		"status":       "status",
		"review_time":  "review_time",
		"expert_count": "expert_count",
		"created_at":   "created_at",
	}

	builder := r.sq.Select(drawColumns...).From("draws")
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	builder = applySort(builder, params, sortMap, "id")
	builder = builder.
		Offset(uint64((params.Page - 1) * params.PageSize)).
		Limit(uint64(params.PageSize))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var draws []domain.Draw
	if err := r.db.SelectContext(ctx, &draws, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return draws, total, nil
}

// drawResultRow flattens a result joined with its expert for scanning.
type drawResultRow struct {
	ID            int64                `db:"id"`
	DrawID        int64                `db:"draw_id"`
	ExpertID      int64                `db:"expert_id"`
	IsBackup      bool                 `db:"is_backup"`
	IsReplacement bool                 `db:"is_replacement"`
	Ordinal       int                  `db:"ordinal"`
	ContactStatus domain.ContactStatus `db:"contact_status"`
	CreatedAt     sql.NullTime         `db:"created_at"`

	ExpertName       string  `db:"expert_name"`
	Gender           *string `db:"gender"`
	Phone            *string `db:"phone"`
	Email            *string `db:"email"`
	IDNumber         *string `db:"id_number"`
	OrganizationID   *int64  `db:"expert_organization_id"`
	OrganizationName *string `db:"organization_name"`
	TitleID          *int64  `db:"expert_title_id"`
	TitleName        *string `db:"title_name"`
}

func (row drawResultRow) toDomain() domain.DrawResult {
	result := domain.DrawResult{
		ID:            row.ID,
		DrawID:        row.DrawID,
		ExpertID:      row.ExpertID,
		IsBackup:      row.IsBackup,
		IsReplacement: row.IsReplacement,
		Ordinal:       row.Ordinal,
		ContactStatus: row.ContactStatus,
		Expert: &domain.Expert{
			ID:               row.ExpertID,
			Name:             row.ExpertName,
			Gender:           row.Gender,
			Phone:            row.Phone,
			Email:            row.Email,
			IDNumber:         row.IDNumber,
			OrganizationID:   row.OrganizationID,
			OrganizationName: row.OrganizationName,
			TitleID:          row.TitleID,
			TitleName:        row.TitleName,
			IsActive:         true,
		},
	}
	if row.CreatedAt.Valid {
		result.CreatedAt = row.CreatedAt.Time
	}

	return result
}

var resultSelectColumns = []string{
	"dr.id", "dr.draw_id", "dr.expert_id", "dr.is_backup", "dr.is_replacement",
	"dr.ordinal", "dr.contact_status", "dr.created_at",
	"e.name AS expert_name", "e.gender", "e.phone", "e.email", "e.id_number",
	"e.organization_id AS expert_organization_id", "o.name AS organization_name",
	"e.title_id AS expert_title_id", "t.name AS title_name",
}

func (r *DrawQueryRepository) resultBuilder() sq.SelectBuilder {
	return r.sq.Select(resultSelectColumns...).
		From("draw_results dr").
		Join("experts e ON e.id = dr.expert_id").
		LeftJoin("organizations o ON o.id = e.organization_id").
		LeftJoin("titles t ON t.id = e.title_id")
}

func (r *DrawQueryRepository) GetResultByID(ctx context.Context, ext sqlx.ExtContext, drawID, resultID int64) (*domain.DrawResult, error) {
	const op = "internal.repository.postgres.drawquery.GetResultByID"

	query, args, err := r.resultBuilder().
		Where(sq.Eq{"dr.draw_id": drawID, "dr.id": resultID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var row drawResultRow
	if err := sqlx.GetContext(ctx, r.ext(ext), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: result with id '%d'", op, apperrors.ErrNotFound, resultID)
		}

		return nil, fmt.Errorf("%s: failed to get result: %w", op, err)
	}

	result := row.toDomain()

	return &result, nil
}

func (r *DrawQueryRepository) ListResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) ([]domain.DrawResult, error) {
	const op = "internal.repository.postgres.drawquery.ListResults"

	query, args, err := r.resultBuilder().
		Where(sq.Eq{"dr.draw_id": drawID}).
		OrderBy("dr.is_backup", "dr.ordinal", "dr.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []drawResultRow
	if err := sqlx.SelectContext(ctx, r.ext(ext), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	results := make([]domain.DrawResult, len(rows))
	for i, row := range rows {
		results[i] = row.toDomain()
	}

	return results, nil
}

func (r *DrawQueryRepository) ListResultsPage(ctx context.Context, drawID int64, params domain.PageParams) ([]domain.DrawResult, int, error) {
	const op = "internal.repository.postgres.drawquery.ListResultsPage"

	params.Normalize()

	where := sq.And{sq.Eq{"dr.draw_id": drawID}}
	if params.Keyword != "" {
		pattern := "%" + params.Keyword + "%"
		where = append(where, sq.Or{
			sq.ILike{"e.name": pattern},
			sq.ILike{"o.name": pattern},
			sq.ILike{"e.phone": pattern},
			sq.ILike{"e.email": pattern},
		})
	}

	countQuery, countArgs, err := r.sq.Select("COUNT(*)").
		From("draw_results dr").
		Join("experts e ON e.id = dr.expert_id").
		LeftJoin("organizations o ON o.id = e.organization_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count results: %w", op, err)
	}

	sortMap := map[string]string{
		"id":             "dr.id",
		"ordinal":        "dr.ordinal",
		"is_backup":      "dr.is_backup",
		"is_replacement": "dr.is_replacement",
	}

	builder := r.resultBuilder().Where(where)
	if params.SortBy == "" {
		builder = builder.OrderBy("dr.is_backup", "dr.ordinal", "dr.id")
	} else {
		builder = applySort(builder, params, sortMap, "dr.id")
	}
	builder = builder.
		Offset(uint64((params.Page - 1) * params.PageSize)).
		Limit(uint64(params.PageSize))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []drawResultRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	results := make([]domain.DrawResult, len(rows))
	for i, row := range rows {
		results[i] = row.toDomain()
	}

	return results, total, nil
}

func (r *DrawQueryRepository) FirstBackup(ctx context.Context, tx *sqlx.Tx, drawID int64) (*domain.DrawResult, error) {
	const op = "internal.repository.postgres.drawquery.FirstBackup"

	query, args, err := r.resultBuilder().
		Where(sq.Eq{"dr.draw_id": drawID, "dr.is_backup": true}).
		OrderBy("dr.ordinal", "dr.id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var row drawResultRow
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get first backup: %w", op, err)
	}

	result := row.toDomain()

	return &result, nil
}

func (r *DrawQueryRepository) CountResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) (int, error) {
	const op = "internal.repository.postgres.drawquery.CountResults"

	query, args, err := r.sq.Select("COUNT(*)").
		From("draw_results").
		Where(sq.Eq{"draw_id": drawID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.ext(ext), &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count results: %w", op, err)
	}

	return count, nil
}

func (r *DrawQueryRepository) CountAcceptedPrimary(ctx context.Context, ext sqlx.ExtContext, drawID int64) (int, error) {
	const op = "internal.repository.postgres.drawquery.CountAcceptedPrimary"

	query, args, err := r.sq.Select("COUNT(*)").
		From("draw_results").
		Where(sq.Eq{
			"draw_id":        drawID,
			"is_backup":      false,
			"contact_status": domain.ContactStatusAccepted,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.ext(ext), &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count accepted results: %w", op, err)
	}

	return count, nil
}

func (r *DrawQueryRepository) HasConfirmedResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) (bool, error) {
	const op = "internal.repository.postgres.drawquery.HasConfirmedResults"

	query, args, err := r.sq.Select("COUNT(*)").
		From("draw_results").
		Where(sq.Eq{"draw_id": drawID}).
		Where(sq.NotEq{"contact_status": domain.ContactStatusPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.ext(ext), &count, query, args...); err != nil {
		return false, fmt.Errorf("%s: failed to count confirmed results: %w", op, err)
	}

	return count > 0, nil
}

// applySort orders by a mapped column when the requested key is known,
// falling back to the default column otherwise.
func applySort(builder sq.SelectBuilder, params domain.PageParams, sortMap map[string]string, defaultColumn string) sq.SelectBuilder {
	column, ok := sortMap[params.SortBy]
	if !ok {
		return builder.OrderBy(defaultColumn + " DESC")
	}

	direction := "ASC"
	if params.SortOrder == "desc" {
		direction = "DESC"
	}

	return builder.OrderBy(column+" "+direction, defaultColumn+" ASC")
}
