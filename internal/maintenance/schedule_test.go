package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/r2client"
)

type fakeStore struct {
	mu            sync.Mutex
	body          []byte
	etag          string
	version       int
	staleWrites   int // PutObjectIfMatch rejections to inject
	downloadErrs  []error
	downloadCalls int
	onDownload    func()
}

func (f *fakeStore) Download(_ context.Context, _ string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloadCalls++
	if f.onDownload != nil {
		f.onDownload()
	}
	if len(f.downloadErrs) > 0 {
		err := f.downloadErrs[0]
		f.downloadErrs = f.downloadErrs[1:]
		return nil, "", err
	}
	if f.body == nil {
		return nil, "", r2client.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(f.body)), f.etag, nil
}

func (f *fakeStore) PutObjectIfNotExists(_ context.Context, _ string, body io.Reader, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.body != nil {
		return false, "", nil
	}
	f.write(body)
	return true, f.etag, nil
}

func (f *fakeStore) PutObjectIfMatch(_ context.Context, _ string, body io.Reader, etag, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.body == nil || etag != f.etag {
		return false, "", nil
	}
	if f.staleWrites > 0 {
		f.staleWrites--
		return false, "", nil
	}
	f.write(body)
	return true, f.etag, nil
}

func (f *fakeStore) write(body io.Reader) {
	f.body, _ = io.ReadAll(body)
	f.version++
	f.etag = "etag-" + strconv.Itoa(f.version)
}

func (f *fakeStore) state(t *testing.T) State {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var s State
	require.NoError(t, json.Unmarshal(f.body, &s))
	return s
}

func newStore(t *testing.T, fs *fakeStore, now time.Time) *ScheduleStore {
	t.Helper()
	s, err := NewScheduleStore(fs, "results/schedule.json", time.Second)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestNewScheduleStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewScheduleStore(nil, "key", time.Second)
	require.Error(t, err)
	_, err = NewScheduleStore(&fakeStore{}, "", time.Second)
	require.Error(t, err)
}

func TestStateRefreshDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 7, 25, 19, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		state    State
		interval time.Duration
		want     bool
	}{
		{"never refreshed", State{}, time.Hour, true},
		{"recent", State{LastRefresh: now.Add(-10 * time.Minute).Unix()}, time.Hour, false},
		{"exactly interval", State{LastRefresh: now.Add(-time.Hour).Unix()}, time.Hour, true},
		{"stale", State{LastRefresh: now.Add(-3 * time.Hour).Unix()}, time.Hour, true},
		{"no interval", State{LastRefresh: now.Unix()}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.state.RefreshDue(now, tt.interval))
		})
	}
}

func TestDueWhenMissing(t *testing.T) {
	t.Parallel()

	s := newStore(t, &fakeStore{}, time.Now())
	due, state, err := s.Due(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.True(t, due)
	assert.Zero(t, state)
}

func TestMarkRefreshedThenNotDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 7, 25, 19, 0, 0, 0, time.UTC)
	fs := &fakeStore{}
	s := newStore(t, fs, now)
	ctx := context.Background()

	require.NoError(t, s.MarkRefreshed(ctx, 42, "2024-07-25"))
	got := fs.state(t)
	assert.Equal(t, now.Unix(), got.LastRefresh)
	assert.Equal(t, 42, got.LastRows)
	assert.Equal(t, "2024-07-25", got.LastDrawDate)

	due, _, err := s.Due(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, due)

	// An empty date keeps the previous one.
	require.NoError(t, s.MarkRefreshed(ctx, 0, ""))
	assert.Equal(t, "2024-07-25", fs.state(t).LastDrawDate)
}

func TestMarkRefreshedRetriesOnStaleETag(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{}
	s := newStore(t, fs, time.Unix(1_700_000_000, 0))
	ctx := context.Background()
	require.NoError(t, s.MarkRefreshed(ctx, 1, ""))

	fs.staleWrites = 1
	require.NoError(t, s.MarkRefreshed(ctx, 2, ""))
	assert.Equal(t, 2, fs.state(t).LastRows)

	fs.staleWrites = 5
	assert.Error(t, s.MarkRefreshed(ctx, 3, ""))
}

func TestLoadRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{downloadErrs: []error{errors.New("boom-1"), errors.New("boom-2"), errors.New("boom-3")}}
	s := newStore(t, fs, time.Now())

	_, _, _, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, fs.downloadCalls)
}

func TestLoadDoesNotRetryCancellation(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{downloadErrs: []error{context.Canceled}}
	s := newStore(t, fs, time.Now())

	_, _, _, err := s.Load(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fs.downloadCalls)
}

func TestLoadStopsWhenContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fs := &fakeStore{downloadErrs: []error{errors.New("temporary")}, onDownload: cancel}
	s := newStore(t, fs, time.Now())

	_, _, _, err := s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fs.downloadCalls)
}

func TestLoadRejectsCorruptState(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{body: []byte("{not json"), etag: "etag-1"}
	s := newStore(t, fs, time.Now())

	_, _, _, err := s.Load(context.Background())
	assert.ErrorContains(t, err, "decode")
}
