package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// sqliteTimeLayout sorts lexically in the same order as the instants it
// encodes, so range predicates work on the TEXT columns.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type dialect struct {
	name string
	// like is the case-insensitive substring operator.
	like      string
	monthExpr string
	numbered  bool
}

var dialects = map[string]dialect{
	BackendPostgres: {
		name:      BackendPostgres,
		like:      "ILIKE",
		monthExpr: "EXTRACT(MONTH FROM date)::int",
		numbered:  true,
	},
	BackendSQLite: {
		name:      BackendSQLite,
		like:      "LIKE",
		monthExpr: "CAST(strftime('%m', date) AS INTEGER)",
	},
}

func dialectFor(backend string) (dialect, error) {
	d, ok := dialects[backend]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported data backend: %q", backend)
	}
	return d, nil
}

// rebind turns ? placeholders into $1, $2, ... for PostgreSQL.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d dialect) timeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Second)
	if d.name == BackendSQLite {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

func (d dialect) nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.timeArg(*t)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
