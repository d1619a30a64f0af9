package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// baseRepository centralizes the soft-delete predicate every concrete
// repository needs, generalizing
// original_source/daemon/database/repository/base.py's BaseRepository:
// where that class parameterizes over a SQLAlchemy model class, this one
// parameterizes over a table name and carries the shared *sql.DB.
//
// Every repository writes its queries with the sqlite/mysql `?`
// placeholder, matching Engine's doc comment's promised "placeholder
// style" knob; dialect carries that knob so rebind can translate them to
// `$1, $2, ...` for the postgres driver, which lib/pq requires.
type baseRepository struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

func newBaseRepository(e *Engine, table string) baseRepository {
	return baseRepository{db: e.db, table: table, dialect: e.dialect}
}

// rebind translates a query written with `?` placeholders into the
// target dialect's placeholder style. sqlite and mysql both accept `?`
// as-is; postgresql requires `$1, $2, ...` in positional order.
func (b baseRepository) rebind(query string) string {
	if b.dialect != DialectPostgreSQL {
		return query
	}

	var out strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&out, "$%d", n)
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// exec, queryRow and query rebind the placeholder style before
// delegating to the underlying *sql.DB, so every repository method gets
// dialect-correct SQL without hand-rolling it per query.
func (b baseRepository) exec(query string, args ...any) (sql.Result, error) {
	return b.db.Exec(b.rebind(query), args...)
}

func (b baseRepository) queryRow(query string, args ...any) *sql.Row {
	return b.db.QueryRow(b.rebind(query), args...)
}

func (b baseRepository) query(query string, args ...any) (*sql.Rows, error) {
	return b.db.Query(b.rebind(query), args...)
}

// live is appended to every SELECT this package issues: soft-deleted rows
// are never visible to callers (spec.md §3 invariant).
const live = "deleted_at IS NULL"

// softDelete sets deleted_at = now() for every row in the table matching
// the given WHERE clause and args (spec.md's soft-delete semantics for
// chat/history removal).
func (b baseRepository) softDelete(where string, args ...any) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = CURRENT_TIMESTAMP WHERE %s AND %s", b.table, where, live)
	if _, err := b.exec(query, args...); err != nil {
		return fmt.Errorf("%w: soft-deleting from %s: %v", ErrQuery, b.table, err)
	}
	return nil
}
