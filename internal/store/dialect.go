package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// dialect captures the SQL differences between supported engines.
type dialect struct {
	name     string
	driver   string
	dateType string
	realType string
	seqCol   string // extra column definition giving insertion order, if the engine has no rowid
	orderCol string
	timeArg  func(t time.Time) any
	numbered bool // $1 placeholders instead of ?
}

var dialects = map[string]dialect{
	"sqlite": {
		name:     "sqlite",
		driver:   "sqlite",
		dateType: "DATETIME",
		realType: "REAL",
		orderCol: "rowid",
		timeArg:  func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
	},
	"postgres": {
		name:     "postgres",
		driver:   "pgx",
		dateType: "TIMESTAMPTZ",
		realType: "DOUBLE PRECISION",
		seqCol:   "seq BIGSERIAL",
		orderCol: "seq",
		timeArg:  func(t time.Time) any { return t.UTC() },
		numbered: true,
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
	return d, nil
}

// rebind rewrites ? placeholders for engines using numbered parameters.
func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
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

func (d dialect) schema(mode KeyMode) []string {
	cols := []string{
		"symbol TEXT NOT NULL",
		"date " + d.dateType + " NOT NULL",
		"open " + d.realType,
		"high " + d.realType,
		"low " + d.realType,
		"close " + d.realType,
		"adj_close " + d.realType,
		"volume " + d.realType,
	}
	if d.seqCol != "" {
		cols = append(cols, d.seqCol)
	}
	if mode != KeyAppend {
		cols = append(cols, "PRIMARY KEY (symbol, date)")
	}
	return []string{
		"CREATE TABLE IF NOT EXISTS stocks (\n\t" + strings.Join(cols, ",\n\t") + "\n)",
		"CREATE INDEX IF NOT EXISTS idx_stocks_symbol ON stocks(symbol)",
	}
}

func (d dialect) insert(mode KeyMode) string {
	q := "INSERT INTO stocks (symbol, date, open, high, low, close, adj_close, volume) VALUES (?,?,?,?,?,?,?,?)"
	if mode == KeyIgnore {
		q += " ON CONFLICT DO NOTHING"
	}
	return d.rebind(q)
}

func (d dialect) selectBySymbol() string {
	return d.rebind("SELECT symbol, date, open, high, low, close, adj_close, volume FROM stocks WHERE symbol = ? ORDER BY " + d.orderCol)
}
