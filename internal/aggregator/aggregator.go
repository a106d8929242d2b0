package aggregator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/collector"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
)

// Aggregator computes combined pull statistics for tracked repositories
type Aggregator interface {
	// CombinedStats samples the current pull counters and combines them with
	// the oldest stored sample inside each look-back window. It never returns
	// an error: failed lookups collapse to zero deltas and failed samples
	// drop their row, so the dashboard always has something to render.
	CombinedStats(ctx context.Context, repos []domain.Repository) []*domain.PullStats
}

// aggregator implements the Aggregator interface
type aggregator struct {
	sampler collector.Sampler
	storage storage.Storage
	logger  *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(sampler collector.Sampler, store storage.Storage, logger *zap.Logger) Aggregator {
	return &aggregator{
		sampler: sampler,
		storage: store,
		logger:  logger,
	}
}

// history maps repository identity keys to the oldest sample found inside one
// window. A repository with no resolvable sample is simply absent.
type history map[string]*domain.Sample

// CombinedStats samples the current pull counters and combines them with
// the oldest stored sample inside each look-back window
func (a *aggregator) CombinedStats(ctx context.Context, repos []domain.Repository) []*domain.PullStats {
	if len(repos) == 0 {
		a.logger.Warn("no repositories configured, returning empty stats")
		return []*domain.PullStats{}
	}

	// The sampling pass and the historical fan-out share nothing, so both run
	// at once and join before the merge.
	var (
		samples []*domain.Sample
		wg      sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		samples = a.sampler.Sample(ctx, repos)
	}()

	windows := a.resolveWindows(ctx, repos)
	wg.Wait()

	stats := make([]*domain.PullStats, 0, len(samples))
	for _, sample := range samples {
		key := sample.Org + "/" + sample.Repo
		stats = append(stats, &domain.PullStats{
			Org:            sample.Org,
			Repo:           sample.Repo,
			TotalPulls:     sample.Pulls,
			OneDayPulls:    delta(sample.Pulls, windows[domain.WindowDay][key]),
			SevenDayPulls:  delta(sample.Pulls, windows[domain.WindowWeek][key]),
			ThirtyDayPulls: delta(sample.Pulls, windows[domain.WindowMonth][key]),
		})
	}

	return stats
}

// resolveWindows runs one oldest-in-window lookup per repository per window,
// all concurrently, and merges the results into per-window history maps after
// every lookup has settled. If the orchestration itself blows up, the caller
// still gets empty maps so current totals render with zero deltas.
func (a *aggregator) resolveWindows(ctx context.Context, repos []domain.Repository) (windows map[domain.Window]history) {
	windows = make(map[domain.Window]history, len(domain.Windows()))
	for _, window := range domain.Windows() {
		windows[window] = make(history, len(repos))
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("historical lookup failed entirely, serving current totals only",
				zap.Any("panic", r))
			windows = make(map[domain.Window]history, len(domain.Windows()))
			for _, window := range domain.Windows() {
				windows[window] = make(history)
			}
		}
	}()

	now := time.Now()
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, window := range domain.Windows() {
		for _, repo := range repos {
			wg.Add(1)
			go func(window domain.Window, repo domain.Repository) {
				defer wg.Done()

				oldest := a.resolveOldest(ctx, repo, window, now)
				if oldest == nil {
					return
				}

				mu.Lock()
				windows[window][repo.Key()] = oldest
				mu.Unlock()
			}(window, repo)
		}
	}

	wg.Wait()
	return windows
}

// resolveOldest finds the oldest sample of repo inside the window, the point
// closest to the window boundary given sparse sampling. Query failures are
// downgraded to "no data": one repository's store error must not take down
// the whole page.
func (a *aggregator) resolveOldest(ctx context.Context, repo domain.Repository, window domain.Window, now time.Time) *domain.Sample {
	since := now.Add(-window.Duration())

	sample, err := a.storage.OldestSince(ctx, repo.Org, repo.Name, since)
	if err != nil {
		a.logger.Warn("historical lookup failed, treating window as empty",
			zap.String("repo", repo.Key()),
			zap.Stringer("window", window),
			zap.Error(err))
		return nil
	}
	return sample
}

// delta is the increase of the counter over one window. No history means no
// claimable increase, and a historical value above the current one (counter
// reset, out-of-order sample) clamps to zero rather than going negative.
func delta(current int64, oldest *domain.Sample) int64 {
	if oldest == nil {
		return 0
	}
	if current < oldest.Pulls {
		return 0
	}
	return current - oldest.Pulls
}
