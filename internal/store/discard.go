package store

import (
	"context"

	"StockAnalyzer/internal/model"
)

// Discard accepts appends without persisting them. Used for dry-run feeds.
type Discard struct{}

func NewDiscard() Discard { return Discard{} }

func (Discard) EnsureSchema(context.Context) error { return nil }

func (Discard) Append(_ context.Context, bars []model.Bar) (int, error) { return len(bars), nil }

func (Discard) Query(context.Context, string) ([]model.Bar, error) { return nil, nil }
