// Package sqlrepo implements storage.Repository on top of database/sql.
// The SQLite and PostgreSQL stores share it and differ only in dialect.
package sqlrepo

import (
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between backends
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) instead of ?
	Numbered bool
	// LockSuffix is appended to single-row reads inside a transaction
	LockSuffix string
}

var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", Numbered: true, LockSuffix: " FOR UPDATE"}
)

// Rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
