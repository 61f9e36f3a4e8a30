package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/model"
)

// Config selects the engine, location and key mode of a SQLStore.
type Config struct {
	Driver  string // sqlite | postgres
	DSN     string
	KeyMode KeyMode
}

// SQLStore persists bars through database/sql. It holds no connection between calls:
// every operation opens a handle, does one logical operation and releases it.
type SQLStore struct {
	cfg     Config
	dialect dialect
	log     *zap.Logger
}

// Open validates cfg and returns a store. No connection is made until the first operation.
func Open(cfg Config, log *zap.Logger) (*SQLStore, error) {
	d, err := lookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("empty dsn for %s store", cfg.Driver)
	}
	if cfg.KeyMode == "" {
		cfg.KeyMode = KeyIgnore
	}
	if _, err := ParseKeyMode(string(cfg.KeyMode)); err != nil {
		return nil, err
	}
	return &SQLStore{cfg: cfg, dialect: d, log: logger.OrNop(log)}, nil
}

// withDB runs fn against a fresh handle and closes it unconditionally.
func (s *SQLStore) withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := sql.Open(s.dialect.driver, s.cfg.DSN)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "connect database")
	}
	return fn(db)
}

// EnsureSchema creates the stocks table and its index if they are absent.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if s.dialect.name == "sqlite" && !strings.HasPrefix(s.cfg.DSN, "file:") && s.cfg.DSN != ":memory:" {
		if dir := filepath.Dir(s.cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(err, "create database dir")
			}
		}
	}
	return s.withDB(ctx, func(db *sql.DB) error {
		if s.dialect.name == "sqlite" {
			if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
				return errors.Wrap(err, "set WAL mode")
			}
		}
		for _, stmt := range s.dialect.schema(s.cfg.KeyMode) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "exec %q", firstLine(stmt))
			}
		}
		s.log.Info("schema ready", zap.String("driver", s.cfg.Driver), zap.String("key_mode", string(s.cfg.KeyMode)))
		return nil
	})
}

// Append writes bars in one transaction and returns the number of rows stored.
// Under KeyIgnore, rows colliding with stored keys are not counted.
func (s *SQLStore) Append(ctx context.Context, bars []model.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	symbol := model.NormalizeSymbol(bars[0].Symbol)

	written := 0
	err := s.withDB(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "begin")
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, s.dialect.insert(s.cfg.KeyMode))
		if err != nil {
			return errors.Wrap(err, "prepare insert")
		}
		defer stmt.Close()

		for _, b := range bars {
			sym := model.NormalizeSymbol(b.Symbol)
			if sym == "" {
				return errors.New("bar without symbol")
			}
			res, err := stmt.ExecContext(ctx,
				sym, s.dialect.timeArg(b.Time),
				nullable(b.Open), nullable(b.High), nullable(b.Low), nullable(b.Close),
				nullable(b.AdjClose), nullable(b.Volume),
			)
			if err != nil {
				return errors.Wrapf(err, "insert %s at %s", sym, b.Time.Format(time.RFC3339))
			}
			if n, err := res.RowsAffected(); err == nil {
				written += int(n)
			} else {
				written++
			}
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "commit")
		}
		return nil
	})
	if err != nil {
		return 0, &WriteError{Symbol: symbol, Rows: len(bars), Err: err}
	}
	s.log.Debug("bars appended", zap.String("symbol", symbol), zap.Int("rows", written), zap.Int("offered", len(bars)))
	return written, nil
}

// Query returns every row stored for symbol in insertion order.
func (s *SQLStore) Query(ctx context.Context, symbol string) ([]model.Bar, error) {
	sym := model.NormalizeSymbol(symbol)
	var bars []model.Bar
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, s.dialect.selectBySymbol(), sym)
		if err != nil {
			return errors.Wrap(err, "select")
		}
		defer rows.Close()

		for rows.Next() {
			var (
				b                              model.Bar
				ts                             dbTime
				open, high, low, cls, adj, vol sql.NullFloat64
			)
			if err := rows.Scan(&b.Symbol, &ts, &open, &high, &low, &cls, &adj, &vol); err != nil {
				return errors.Wrap(err, "scan")
			}
			b.Time = ts.Time
			b.Open = orNaN(open)
			b.High = orNaN(high)
			b.Low = orNaN(low)
			b.Close = orNaN(cls)
			b.AdjClose = b.Close
			if adj.Valid {
				b.AdjClose = adj.Float64
			}
			if vol.Valid {
				b.Volume = vol.Float64
			}
			bars = append(bars, b)
		}
		return errors.Wrap(rows.Err(), "iterate")
	})
	if err != nil {
		return nil, &ReadError{Symbol: sym, Err: err}
	}
	return bars, nil
}

// Symbols lists the distinct symbols held by the store.
func (s *SQLStore) Symbols(ctx context.Context) ([]string, error) {
	var out []string
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, "SELECT DISTINCT symbol FROM stocks ORDER BY symbol")
		if err != nil {
			return errors.Wrap(err, "select symbols")
		}
		defer rows.Close()
		for rows.Next() {
			var sym string
			if err := rows.Scan(&sym); err != nil {
				return errors.Wrap(err, "scan symbol")
			}
			out = append(out, sym)
		}
		return errors.Wrap(rows.Err(), "iterate symbols")
	})
	return out, err
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// layouts accepted when a driver hands back the date column as text. The last
// entries cover rows written by other tools, e.g. pandas to_sql.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// dbTime scans a date column regardless of how the driver represents it.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0).UTC()
		return nil
	case nil:
		return errors.New("null date")
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable date %q", s)
}
