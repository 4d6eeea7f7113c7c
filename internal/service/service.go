// package service implements the draw engine: candidate resolution,
// selection, the draw/contact state machine and the read-only result
// projections. Persistence goes through the repository interfaces; every
// multi-row mutation runs inside one transaction scoped to its draw.
package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Transactor begins transactions for the engine's per-draw critical
// sections.
type Transactor interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}
