package results

import (
	"context"
	"fmt"
	"time"

	domerrors "github.com/garyellow/xoso-linebot-go/internal/errors"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

// Service answers result lookups for the bot.
type Service struct {
	repo storage.ResultRepository
}

// NewService wraps repo.
func NewService(repo storage.ResultRepository) *Service {
	return &Service{repo: repo}
}

// ByDate returns the draw on day's calendar date, or ErrNotFound.
func (s *Service) ByDate(ctx context.Context, day time.Time) (*storage.DrawResult, error) {
	r, err := s.repo.GetResultByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: draw on %s", domerrors.ErrNotFound, day.Format(storage.DateLayout))
	}
	return r, nil
}

// Latest returns the most recent draw, or ErrNotFound for an empty store.
func (s *Service) Latest(ctx context.Context) (*storage.DrawResult, error) {
	r, err := s.repo.GetLatestResult(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no draws stored", domerrors.ErrNotFound)
	}
	return r, nil
}
