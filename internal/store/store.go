// Package store persists normalized bars in a relational table keyed by symbol and date.
package store

import (
	"context"
	"fmt"

	"StockAnalyzer/internal/model"
)

// KeyMode selects how the stocks table treats (symbol, date) collisions.
type KeyMode string

const (
	// KeyAppend declares no key: the table is an append log and duplicates are resolved on read.
	KeyAppend KeyMode = "append"
	// KeyStrict declares PRIMARY KEY(symbol, date); a colliding append fails as a whole.
	KeyStrict KeyMode = "strict"
	// KeyIgnore declares PRIMARY KEY(symbol, date); colliding rows are dropped, the rest written.
	KeyIgnore KeyMode = "ignore"
)

// ParseKeyMode validates a key mode name.
func ParseKeyMode(s string) (KeyMode, error) {
	switch m := KeyMode(s); m {
	case KeyAppend, KeyStrict, KeyIgnore:
		return m, nil
	default:
		return "", fmt.Errorf("unknown key mode %q", s)
	}
}

// Appender writes normalized bars.
type Appender interface {
	Append(ctx context.Context, bars []model.Bar) (int, error)
}

// Querier returns every stored row for a symbol in no particular time order.
type Querier interface {
	Query(ctx context.Context, symbol string) ([]model.Bar, error)
}

// Store is the durable bar store.
type Store interface {
	Appender
	Querier
	EnsureSchema(ctx context.Context) error
}

// WriteError reports a failed append. Rows committed by earlier calls are untouched.
type WriteError struct {
	Symbol string
	Rows   int
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store append %s (%d rows): %v", e.Symbol, e.Rows, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed query.
type ReadError struct {
	Symbol string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("store query %s: %v", e.Symbol, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
