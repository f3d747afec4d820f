package database

import (
	"fmt"
	"strings"
)

// Dialect names the SQL flavour behind a connection
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// Upsert builds an INSERT that overwrites updateCols when key already exists.
// Placeholders are "?" and must be passed through Rebind.
func (d Dialect) Upsert(table, key string, cols, updateCols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	sets := make([]string, len(updateCols))
	switch d {
	case MySQL:
		for i, c := range updateCols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return insert + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	default:
		for i, c := range updateCols {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
		}
		return insert + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET ", key) + strings.Join(sets, ", ")
	}
}

// Like returns the case-insensitive substring operator for the dialect
func (d Dialect) Like() string {
	if d == Postgres {
		return "ILIKE"
	}
	// LIKE is case-insensitive for ASCII in sqlite and for the default mysql collations
	return "LIKE"
}

// MigrationsDir returns the per-dialect directory under base
func (d Dialect) MigrationsDir(base string) string {
	return strings.TrimSuffix(base, "/") + "/" + string(d)
}
