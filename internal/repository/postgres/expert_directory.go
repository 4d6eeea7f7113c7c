package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ExpertDirectoryRepository queries the expert directory. Only positive
// eligibility constraints live in SQL; avoidance subtraction happens in the
// resolver where the matching forms (containment, masked identifiers) are
// unit-testable.
type ExpertDirectoryRepository struct {
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewExpertDirectoryRepository(log *slog.Logger) *ExpertDirectoryRepository {
	return &ExpertDirectoryRepository{
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ExpertDirectoryRepository) FindCandidates(ctx context.Context, ext sqlx.ExtContext, q repository.CandidateQuery) ([]domain.Expert, error) {
	const op = "internal.repository.postgres.expertdirectory.FindCandidates"

	builder := r.sq.Select(
		"e.id", "e.name", "e.gender", "e.phone", "e.email", "e.id_number",
		"e.organization_id", "o.name AS organization_name",
		"e.region_id", "e.title_id", "t.name AS title_name", "e.is_active",
	).
		From("experts e").
		LeftJoin("organizations o ON o.id = e.organization_id").
		LeftJoin("titles t ON t.id = e.title_id").
		LeftJoin("regions rg ON rg.id = e.region_id").
		Where(sq.Eq{"e.is_active": true})

	// Specialty ids take precedence over names: a rule carries either
	// identifiers (leaf-expanded by the resolver) or free-text names.
	if len(q.SpecialtyIDs) > 0 {
		builder = builder.Where(sq.Expr(
			"e.id IN (SELECT expert_id FROM expert_specialties WHERE specialty_id = ANY(?))",
			pq.Array(q.SpecialtyIDs),
		))
	} else if len(q.SpecialtyNames) > 0 {
		builder = builder.Where(sq.Expr(
			`e.id IN (SELECT es.expert_id FROM expert_specialties es
				JOIN specialties s ON s.id = es.specialty_id
				WHERE s.name = ANY(?))`,
			pq.Array(q.SpecialtyNames),
		))
	}

	if len(q.TitleIDs) > 0 || len(q.TitleNames) > 0 {
		cond := sq.Or{}
		if len(q.TitleIDs) > 0 {
			cond = append(cond, sq.Expr("e.title_id = ANY(?)", pq.Array(q.TitleIDs)))
		}
		if len(q.TitleNames) > 0 {
			cond = append(cond, sq.Expr("t.name = ANY(?)", pq.Array(q.TitleNames)))
		}
		if q.IncludeUntitled {
			cond = append(cond, sq.Eq{"e.title_id": nil})
		}
		builder = builder.Where(cond)
	}

	if len(q.RegionIDs) > 0 || len(q.RegionNames) > 0 {
		cond := sq.Or{}
		if len(q.RegionIDs) > 0 {
			cond = append(cond, sq.Expr("e.region_id = ANY(?)", pq.Array(q.RegionIDs)))
		}
		if len(q.RegionNames) > 0 {
			cond = append(cond, sq.Expr("rg.name = ANY(?)", pq.Array(q.RegionNames)))
		}
		builder = builder.Where(cond)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var experts []domain.Expert
	if err := sqlx.SelectContext(ctx, ext, &experts, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return experts, nil
}
