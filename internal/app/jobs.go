package app

import (
	"context"
	"time"

	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/sentry"
)

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.goJob(ctx, "results_seed", a.seedResults)
	a.goJob(ctx, "results_refresh", a.refreshResultsLoop)
	a.goJob(ctx, "gauge_metrics", a.updateGaugeMetrics)
}

// goJob runs fn on the WaitGroup and reports panics instead of crashing.
func (a *Application) goJob(ctx context.Context, name string, fn func(context.Context)) {
	a.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.WithField("job", name).WithField("panic", r).Error("Panic in background job")
				sentry.CaptureRecovered(ctx, r)
			}
		}()
		a.logger.WithField("job", name).Debug("Background job started")
		defer a.logger.WithField("job", name).Debug("Background job stopped")
		fn(ctx)
	})
}

// seedResults loads the CSV file and R2 snapshot once on start-up.
func (a *Application) seedResults(ctx context.Context) {
	if !a.loader.HasSource() {
		a.logger.Info("No results source configured; /ketqua answers from the existing database")
		return
	}

	seedCtx, cancel := context.WithTimeout(ctx, config.ResultsLoadTimeout)
	defer cancel()

	start := time.Now()
	n, err := a.loader.Seed(seedCtx)
	status := "success"
	if err != nil {
		status = "error"
		a.logger.WithError(err).Error("Failed to seed results")
		sentry.CaptureExceptionWithContext(ctx, err)
	} else {
		a.logger.WithField("rows", n).Info("Results seeded")
	}
	a.metrics.RecordJob("results_seed", status, time.Since(start).Seconds())
}

// refreshResultsLoop refreshes results after an initial delay and then
// every ResultsRefreshInterval, exiting on context cancellation.
func (a *Application) refreshResultsLoop(ctx context.Context) {
	if a.cfg.ResultsSourceURL == "" && !a.cfg.R2Enabled {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(config.ResultsRefreshInitialDelay):
		a.refreshResults(ctx)
	}

	ticker := time.NewTicker(a.cfg.ResultsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refreshResults(ctx)
		}
	}
}

func (a *Application) refreshResults(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, config.ResultsRefreshTimeout)
	defer cancel()

	start := time.Now()
	if a.refreshNotDue(refreshCtx) {
		a.metrics.RecordJob("results_refresh", "skipped", time.Since(start).Seconds())
		return
	}

	n, err := a.loader.Refresh(refreshCtx)
	duration := time.Since(start)

	if err != nil {
		a.logger.WithError(err).Error("Results refresh failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		a.metrics.RecordJob("results_refresh", "error", duration.Seconds())
		return
	}
	a.logger.WithField("rows", n).
		WithField("duration_ms", duration.Milliseconds()).
		Info("Results refresh completed")
	a.metrics.RecordJob("results_refresh", "success", duration.Seconds())

	if a.schedule != nil {
		if err := a.schedule.MarkRefreshed(refreshCtx, n, a.latestDrawDate(refreshCtx)); err != nil {
			a.logger.WithError(err).Warn("Failed to record refresh schedule")
		}
	}
}

// refreshNotDue reports whether another run refreshed recently and the local
// database already holds the draw it recorded. Schedule errors never block
// a refresh.
func (a *Application) refreshNotDue(ctx context.Context) bool {
	if a.schedule == nil {
		return false
	}
	due, state, err := a.schedule.Due(ctx, a.cfg.ResultsRefreshInterval)
	if err != nil {
		a.logger.WithError(err).Warn("Refresh schedule unavailable")
		return false
	}
	if due || a.latestDrawDate(ctx) < state.LastDrawDate {
		return false
	}
	a.logger.WithField("last_refresh", time.Unix(state.LastRefresh, 0).UTC().Format(time.RFC3339)).
		Debug("Results refresh not due")
	return true
}

// latestDrawDate returns the newest stored draw as YYYY-MM-DD, or "".
func (a *Application) latestDrawDate(ctx context.Context) string {
	latest, err := a.db.GetLatestResult(ctx)
	if err != nil || latest == nil {
		return ""
	}
	return latest.DateKey()
}

// updateGaugeMetrics periodically records table and in-memory sizes.
func (a *Application) updateGaugeMetrics(ctx context.Context) {
	a.recordGauges(ctx)

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordGauges(ctx)
		}
	}
}

func (a *Application) recordGauges(ctx context.Context) {
	if n, err := a.db.CountResults(ctx); err == nil {
		a.metrics.SetResultsRows(n)
	}
	if a.sessions != nil {
		a.metrics.SetSessionsActive(a.sessions.Len())
	}
	if a.userLimiter != nil {
		a.metrics.SetRateLimiterUsers(a.userLimiter.ActiveCount())
	}
}
