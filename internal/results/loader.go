package results

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	domerrors "github.com/garyellow/xoso-linebot-go/internal/errors"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/r2client"
	"github.com/garyellow/xoso-linebot-go/internal/scraper"
	"github.com/garyellow/xoso-linebot-go/internal/scraper/xsmb"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

const (
	// SourceCSV tags rows loaded from the local CSV file.
	SourceCSV = "csv"
	// SourceR2 tags rows loaded from the published snapshot.
	SourceR2 = "r2"

	refreshKey = "xsmb-refresh"
	lockSuffix = ".lock"

	// snapshotLimit bounds the published snapshot; decades of daily draws.
	snapshotLimit = 20000
)

// SnapshotStore is the object storage the loader publishes to and reads from.
type SnapshotStore interface {
	r2client.ConditionalStore
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Options configures a Loader. Every source is optional.
type Options struct {
	CSVPath     string
	SourceURL   string
	Scraper     *scraper.Client
	Store       SnapshotStore
	SnapshotKey string
	LockTTL     time.Duration
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// Loader fills the results repository from the configured sources.
type Loader struct {
	repo    storage.ResultRepository
	opts    Options
	dedup   *scraper.Deduper
	log     *logger.Logger
	fetchFn func(ctx context.Context) ([]*storage.DrawResult, error)
}

// NewLoader creates a loader over repo.
func NewLoader(repo storage.ResultRepository, opts Options) *Loader {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}
	log := opts.Logger
	if log == nil {
		log = logger.New("info")
	}
	l := &Loader{
		repo:  repo,
		opts:  opts,
		dedup: scraper.NewDeduper(),
		log:   log.WithModule("results"),
	}
	l.fetchFn = l.fetchWeb
	return l
}

// HasSource reports whether any source is configured.
func (l *Loader) HasSource() bool {
	return l.opts.CSVPath != "" || l.opts.SourceURL != "" || l.opts.Store != nil
}

// Seed loads the local CSV and the published snapshot concurrently, then
// stores both. A missing snapshot object is not an error.
func (l *Loader) Seed(ctx context.Context) (int, error) {
	if !l.HasSource() {
		return 0, domerrors.ErrNoResultsSource
	}

	var fromCSV, fromSnapshot []*storage.DrawResult
	g, gctx := errgroup.WithContext(ctx)
	if l.opts.CSVPath != "" {
		g.Go(func() error {
			rows, err := readCSVFile(l.opts.CSVPath)
			fromCSV = rows
			return err
		})
	}
	if l.opts.Store != nil && l.opts.SnapshotKey != "" {
		g.Go(func() error {
			rows, err := l.downloadSnapshot(gctx)
			if errors.Is(err, r2client.ErrNotFound) {
				return nil
			}
			fromSnapshot = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// Snapshot rows are written last so they win over a stale local file.
	saved := 0
	for _, rows := range [][]*storage.DrawResult{fromCSV, fromSnapshot} {
		if err := l.repo.SaveResultsBatch(ctx, rows); err != nil {
			return saved, fmt.Errorf("save seeded results: %w", err)
		}
		saved += len(rows)
	}

	l.updateRowsGauge(ctx)
	l.log.WithField("csv_rows", len(fromCSV)).
		WithField("snapshot_rows", len(fromSnapshot)).
		Info("Results seeded")
	return saved, nil
}

// ImportCSV parses path and stores its rows.
func (l *Loader) ImportCSV(ctx context.Context, path string) (int, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return 0, err
	}
	if err := l.repo.SaveResultsBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("save imported results: %w", err)
	}
	l.updateRowsGauge(ctx)
	return len(rows), nil
}

// Refresh pulls new draws. With a snapshot store, one instance at a time
// holds the refresh lock, scrapes the page and republishes the snapshot;
// the others just reload the snapshot. Concurrent calls in one process
// share a single run.
func (l *Loader) Refresh(ctx context.Context) (int, error) {
	if l.opts.SourceURL == "" && l.opts.Store == nil {
		return 0, domerrors.ErrNoResultsSource
	}

	v, _, err := l.dedup.Do(ctx, refreshKey, func() (any, error) {
		return l.refresh(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (l *Loader) refresh(ctx context.Context) (int, error) {
	if l.opts.Store == nil {
		return l.scrapeAndSave(ctx)
	}

	lock := r2client.NewLock(l.opts.Store, l.opts.SnapshotKey+lockSuffix, l.opts.LockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !acquired {
		l.log.Debug("Refresh lock held elsewhere, reloading snapshot")
		return l.reloadSnapshot(ctx)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			l.log.WithError(err).Warn("Failed to release refresh lock")
		}
	}()

	saved := 0
	if l.opts.SourceURL != "" {
		if saved, err = l.scrapeAndSave(ctx); err != nil {
			return 0, err
		}
	}
	if err := l.PublishSnapshot(ctx); err != nil {
		return saved, err
	}
	return saved, nil
}

func (l *Loader) scrapeAndSave(ctx context.Context) (int, error) {
	if l.opts.SourceURL == "" {
		return 0, nil
	}
	rows, err := l.fetchFn(ctx)
	if err != nil {
		return 0, err
	}
	if err := l.repo.SaveResultsBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("save scraped results: %w", err)
	}
	l.updateRowsGauge(ctx)
	l.log.WithField("rows", len(rows)).Info("Results refreshed from web")
	return len(rows), nil
}

func (l *Loader) fetchWeb(ctx context.Context) ([]*storage.DrawResult, error) {
	client := l.opts.Scraper
	if client == nil {
		return nil, errors.New("results: scraper client not configured")
	}
	return xsmb.Fetch(ctx, client, l.opts.SourceURL)
}

func (l *Loader) reloadSnapshot(ctx context.Context) (int, error) {
	rows, err := l.downloadSnapshot(ctx)
	if errors.Is(err, r2client.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := l.repo.SaveResultsBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("save snapshot results: %w", err)
	}
	l.updateRowsGauge(ctx)
	return len(rows), nil
}

// PublishSnapshot uploads every stored draw as CSV, zstd-compressed when
// the key ends in ".zst".
func (l *Loader) PublishSnapshot(ctx context.Context) error {
	if l.opts.Store == nil || l.opts.SnapshotKey == "" {
		return domerrors.ErrNoResultsSource
	}

	rows, err := l.repo.ListRecentResults(ctx, snapshotLimit)
	if err != nil {
		return fmt.Errorf("list results for snapshot: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return err
	}

	body := buf.Bytes()
	contentType := "text/csv"
	if r2client.IsCompressed(l.opts.SnapshotKey) {
		if body, err = r2client.Compress(body); err != nil {
			return err
		}
		contentType = "application/zstd"
	}

	if _, err := l.opts.Store.Upload(ctx, l.opts.SnapshotKey, bytes.NewReader(body), contentType); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	l.log.WithField("rows", len(rows)).WithField("key", l.opts.SnapshotKey).Info("Results snapshot published")
	return nil
}

func (l *Loader) downloadSnapshot(ctx context.Context) ([]*storage.DrawResult, error) {
	body, _, err := l.opts.Store.Download(ctx, l.opts.SnapshotKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var reader io.Reader = body
	if r2client.IsCompressed(l.opts.SnapshotKey) {
		dec, err := r2client.NewDecompressReader(body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = dec.Close() }()
		reader = dec
	}
	return ParseCSV(reader, SourceR2)
}

func (l *Loader) updateRowsGauge(ctx context.Context) {
	if l.opts.Metrics == nil {
		return
	}
	if n, err := l.repo.CountResults(ctx); err == nil {
		l.opts.Metrics.SetResultsRows(n)
	}
}

func readCSVFile(path string) ([]*storage.DrawResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseCSV(f, SourceCSV)
}
