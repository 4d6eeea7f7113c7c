package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReferenceRepository resolves reference trees (specialties, titles,
// regions) and organization name lookups.
type ReferenceRepository struct {
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewReferenceRepository(log *slog.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ReferenceRepository) ExpandSpecialtyLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error) {
	return r.expandLeaves(ctx, ext, "specialties", ids)
}

func (r *ReferenceRepository) ExpandTitleLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error) {
	return r.expandLeaves(ctx, ext, "titles", ids)
}

func (r *ReferenceRepository) ExpandRegionLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error) {
	return r.expandLeaves(ctx, ext, "regions", ids)
}

// expandLeaves walks the subtree under every given node and keeps the ids
// that have no children. A node that is itself a leaf survives unchanged.
// The table name comes from a fixed call site, never from input.
func (r *ReferenceRepository) expandLeaves(ctx context.Context, ext sqlx.ExtContext, table string, ids []int64) ([]int64, error) {
	const op = "internal.repository.postgres.refdata.expandLeaves"

	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE nodes AS (
			SELECT id FROM %[1]s WHERE id = ANY($1)
			UNION
			SELECT c.id FROM %[1]s c JOIN nodes n ON c.parent_id = n.id
		)
		SELECT n.id FROM nodes n
		WHERE NOT EXISTS (SELECT 1 FROM %[1]s ch WHERE ch.parent_id = n.id)
		ORDER BY n.id`, table)

	var leaves []int64
	if err := sqlx.SelectContext(ctx, ext, &leaves, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("%s: failed to expand %s leaves: %w", op, table, err)
	}

	return leaves, nil
}

func (r *ReferenceRepository) ResolveOrganizationIDs(ctx context.Context, ext sqlx.ExtContext, names []string) (map[string]int64, error) {
	const op = "internal.repository.postgres.refdata.ResolveOrganizationIDs"

	if len(names) == 0 {
		return map[string]int64{}, nil
	}

	query, args, err := r.sq.Select("id", "name").
		From("organizations").
		Where(sq.Expr("name = ANY(?)", pq.Array(names))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := sqlx.SelectContext(ctx, ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to resolve organizations: %w", op, err)
	}

	resolved := make(map[string]int64, len(rows))
	for _, row := range rows {
		resolved[row.Name] = row.ID
	}

	return resolved, nil
}
