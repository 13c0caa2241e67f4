package storage

import (
	"context"
	"time"
)

// ResultRepository is the read/write surface the bot and loaders need.
type ResultRepository interface {
	SaveResultsBatch(ctx context.Context, results []*DrawResult) error
	GetResultByDate(ctx context.Context, day time.Time) (*DrawResult, error)
	GetLatestResult(ctx context.Context) (*DrawResult, error)
	ListRecentResults(ctx context.Context, limit int) ([]DrawResult, error)
	CountResults(ctx context.Context) (int, error)
}

var _ ResultRepository = (*DB)(nil)
