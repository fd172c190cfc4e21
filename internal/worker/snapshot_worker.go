// Package worker runs the background jobs behind the analytics
// service. The only job today is the snapshot archiver, which rolls
// each tenant's previous day into the insight archive.
package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ignite/outreach-analytics/internal/domain"
	"github.com/ignite/outreach-analytics/internal/pkg/distlock"
	"github.com/ignite/outreach-analytics/internal/service/insights"
)

// DefaultSnapshotInterval is how often the archive cycle runs.
const DefaultSnapshotInterval = 1 * time.Hour

// SnapshotLockKey names the distributed lock guarding archive cycles.
// SnapshotLockTTL bounds how long a crashed instance can hold it.
const (
	SnapshotLockKey = "insights-archiver"
	SnapshotLockTTL = 10 * time.Minute
)

// Archiver is the slice of the insights service the worker needs.
type Archiver interface {
	Snapshot(ctx context.Context, orgID string, kind domain.EntityKind, date string) (*domain.InsightSnapshot, error)
}

// OrgLister reports which organizations had rollup activity on a date.
type OrgLister interface {
	ListActiveOrgs(ctx context.Context, date string) ([]string, error)
}

// SnapshotWorker archives yesterday's insight overview for every
// active organization and configured entity kind. A distributed lock
// keeps concurrent instances from archiving the same day twice.
type SnapshotWorker struct {
	insights Archiver
	orgs     OrgLister
	lock     distlock.DistLock
	kinds    []domain.EntityKind
	interval time.Duration
}

// NewSnapshotWorker creates a snapshot worker. lock may be nil when
// the deployment runs a single instance.
func NewSnapshotWorker(insights Archiver, orgs OrgLister, lock distlock.DistLock, kinds []domain.EntityKind, interval time.Duration) *SnapshotWorker {
	if len(kinds) == 0 {
		kinds = domain.AllEntityKinds()
	}
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	return &SnapshotWorker{
		insights: insights,
		orgs:     orgs,
		lock:     lock,
		kinds:    kinds,
		interval: interval,
	}
}

// Start begins the archive loop. It blocks until ctx is cancelled.
func (w *SnapshotWorker) Start(ctx context.Context) {
	log.Printf("[SnapshotWorker] Starting (interval=%s, kinds=%d)", w.interval, len(w.kinds))

	// Run once immediately on start
	if _, err := w.RunOnce(ctx); err != nil {
		log.Printf("[SnapshotWorker] Initial run failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SnapshotWorker] Stopping")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				log.Printf("[SnapshotWorker] Run failed: %v", err)
			}
		}
	}
}

// RunOnce archives yesterday (UTC) for every active organization and
// returns the number of snapshots written. Re-running the same day
// overwrites rather than duplicates, so extra cycles are harmless.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (int, error) {
	if w.lock != nil {
		ok, err := w.lock.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			log.Println("[SnapshotWorker] Another instance holds the archive lock, skipping")
			return 0, nil
		}
		defer func() {
			if err := w.lock.Release(ctx); err != nil {
				log.Printf("[SnapshotWorker] Lock release failed: %v", err)
			}
		}()
	}

	date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	return w.archiveDate(ctx, date)
}

func (w *SnapshotWorker) archiveDate(ctx context.Context, date string) (int, error) {
	start := time.Now()

	orgs, err := w.orgs.ListActiveOrgs(ctx, date)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, org := range orgs {
		for _, kind := range w.kinds {
			if ctx.Err() != nil {
				return archived, ctx.Err()
			}
			if _, err := w.insights.Snapshot(ctx, org, kind, date); err != nil {
				if errors.Is(err, insights.ErrNoData) {
					continue
				}
				log.Printf("[SnapshotWorker] Archive %s/%s for %s failed: %v", org, kind, date, err)
				continue
			}
			archived++
		}
	}

	log.Printf("[SnapshotWorker] Archived %d snapshots for %s across %d orgs in %s",
		archived, date, len(orgs), time.Since(start).Round(time.Millisecond))
	return archived, nil
}
