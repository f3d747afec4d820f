package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/klm-wiki-api/internal/database"
	"github.com/pkg/errors"
)

// exists reports whether table has a row with the given id
func exists(ctx context.Context, db *database.DB, table, id string) (bool, error) {
	var found bool
	query := db.Rebind(fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)", table))
	if err := db.GetContext(ctx, &found, query, id); err != nil {
		return false, errors.Wrapf(err, "check %s exists", table)
	}
	return found, nil
}

// count returns the number of rows in table
func count(ctx context.Context, db *database.DB, table string) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	return n, nil
}

// deleteByID removes one row and reports whether it existed
func deleteByID(ctx context.Context, db *database.DB, table, id string) (bool, error) {
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return false, errors.Wrapf(err, "delete from %s", table)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

// likeEscaper makes % and _ in a search term match literally. '!' is the escape
// character because it needs no quoting in any supported dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern wraps term for a substring match
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// likeCond is a case-insensitive substring condition on column for likePattern args
func likeCond(dialect database.Dialect, column string) string {
	return fmt.Sprintf("%s %s ? ESCAPE '!'", column, dialect.Like())
}
