// Package maintenance keeps the results refresh schedule in R2 so that
// restarts and sibling instances do not scrape the source more often
// than the configured interval.
package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/garyellow/xoso-linebot-go/internal/r2client"
)

// State is the persisted refresh bookkeeping. Timestamps are Unix seconds.
type State struct {
	LastRefresh  int64  `json:"last_refresh"`
	LastRows     int    `json:"last_rows"`
	LastDrawDate string `json:"last_draw_date,omitempty"`
	UpdatedAt    int64  `json:"updated_at"`
}

// RefreshDue reports whether interval has elapsed since the last refresh.
// A zero LastRefresh is always due.
func (s State) RefreshDue(now time.Time, interval time.Duration) bool {
	if s.LastRefresh == 0 || interval <= 0 {
		return true
	}
	return now.Sub(time.Unix(s.LastRefresh, 0)) >= interval
}

type objectStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	PutObjectIfNotExists(ctx context.Context, key string, body io.Reader, contentType string) (bool, string, error)
	PutObjectIfMatch(ctx context.Context, key string, body io.Reader, etag string, contentType string) (bool, string, error)
}

// ScheduleStore reads and updates State with ETag compare-and-swap.
type ScheduleStore struct {
	store          objectStore
	key            string
	requestTimeout time.Duration
	now            func() time.Time
}

// NewScheduleStore validates its arguments and returns a store for key.
func NewScheduleStore(store objectStore, key string, requestTimeout time.Duration) (*ScheduleStore, error) {
	if store == nil {
		return nil, errors.New("maintenance: object store is required")
	}
	if key == "" {
		return nil, errors.New("maintenance: schedule key is required")
	}
	return &ScheduleStore{store: store, key: key, requestTimeout: requestTimeout, now: time.Now}, nil
}

// Load returns the state and its ETag; exists is false when nothing has
// been written yet. Transient errors are retried twice with a short backoff,
// cancellation is returned immediately.
func (s *ScheduleStore) Load(ctx context.Context) (state State, etag string, exists bool, err error) {
	const attempts = 3
	for i := range attempts {
		state, etag, exists, err = s.loadOnce(ctx)
		if err == nil {
			return state, etag, exists, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return State{}, "", false, err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return State{}, "", false, ctx.Err()
		case <-time.After(100 * time.Millisecond * time.Duration(i+1)):
		}
	}
	return State{}, "", false, err
}

func (s *ScheduleStore) loadOnce(ctx context.Context) (State, string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	body, etag, err := s.store.Download(ctx, s.key)
	if errors.Is(err, r2client.ErrNotFound) {
		return State{}, "", false, nil
	}
	if err != nil {
		return State{}, "", false, fmt.Errorf("maintenance: download %s: %w", s.key, err)
	}
	defer func() { _ = body.Close() }()

	var state State
	if err := json.NewDecoder(body).Decode(&state); err != nil {
		return State{}, "", false, fmt.Errorf("maintenance: decode %s: %w", s.key, err)
	}
	return state, etag, true, nil
}

// Due loads the state and reports whether a refresh should run now.
// A missing object counts as due.
func (s *ScheduleStore) Due(ctx context.Context, interval time.Duration) (bool, State, error) {
	state, _, _, err := s.Load(ctx)
	if err != nil {
		return false, State{}, err
	}
	return state.RefreshDue(s.now(), interval), state, nil
}

// MarkRefreshed records a successful refresh of rows results, the newest
// being drawDate (may be empty).
func (s *ScheduleStore) MarkRefreshed(ctx context.Context, rows int, drawDate string) error {
	return s.update(ctx, func(st *State) {
		st.LastRefresh = s.now().Unix()
		st.LastRows = rows
		if drawDate != "" {
			st.LastDrawDate = drawDate
		}
	})
}

func (s *ScheduleStore) update(ctx context.Context, apply func(*State)) error {
	for range 3 {
		state, etag, exists, err := s.Load(ctx)
		if err != nil {
			return err
		}
		apply(&state)
		state.UpdatedAt = s.now().Unix()

		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("maintenance: marshal state: %w", err)
		}

		writeCtx, cancel := s.withTimeout(ctx)
		var ok bool
		if exists {
			ok, _, err = s.store.PutObjectIfMatch(writeCtx, s.key, bytes.NewReader(data), etag, "application/json")
		} else {
			ok, _, err = s.store.PutObjectIfNotExists(writeCtx, s.key, bytes.NewReader(data), "application/json")
		}
		cancel()
		if err != nil {
			return fmt.Errorf("maintenance: write %s: %w", s.key, err)
		}
		if ok {
			return nil
		}
		// Lost the race to another instance; reload and reapply.
	}
	return fmt.Errorf("maintenance: %s changed concurrently, giving up", s.key)
}

func (s *ScheduleStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}
