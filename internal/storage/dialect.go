package storage

import (
	"database/sql"
	"strconv"
	"strings"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $n for Postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
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

// contains is a case-sensitive substring predicate on column.
func (d dialect) contains(column string) string {
	if d == dialectPostgres {
		return "strpos(" + column + ", ?) > 0"
	}
	return "instr(" + column + ", ?) > 0"
}

// ownerLock keeps the owner row from disappearing under a batch insert.
func (d dialect) ownerLock() string {
	if d == dialectPostgres {
		return " FOR SHARE"
	}
	return ""
}

func (d dialect) snapshotTx() *sql.TxOptions {
	if d == dialectPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}
