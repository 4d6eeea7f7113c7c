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

type RuleRepository struct {
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewRuleRepository(log *slog.Logger) *RuleRepository {
	return &RuleRepository{
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RuleRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, ruleID int64) (*domain.Rule, error) {
	const op = "internal.repository.postgres.rule.GetByID"

	query, args, err := r.sq.Select("id", "name", "specialties", "titles", "regions", "draw_method", "is_active").
		From("rules").
		Where(sq.Eq{"id": ruleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rule domain.Rule
	if err := sqlx.GetContext(ctx, ext, &rule, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: rule with id '%d'", op, apperrors.ErrNotFound, ruleID)
		}

		return nil, fmt.Errorf("%s: failed to get rule: %w", op, err)
	}

	return &rule, nil
}
