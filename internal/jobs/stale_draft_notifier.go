// stale_draft_notifier.go implements the StaleDraftNotifier background job,
// which periodically counts draft audits that have not been touched for the
// configured number of days and publishes the count as a gauge metric. The job
// never mutates audits: drafts are only ever submitted by an explicit user
// action, so the notifier surfaces forgotten work instead of acting on it.
// It is a no-op when jobs.stale_draft.enabled is false, so it is always safe
// to start regardless of deployment environment.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/eastern-erp/eastern-erp/internal/config"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
	"github.com/eastern-erp/eastern-erp/internal/telemetry"
)

// StaleDraftNotifier periodically measures how many draft audits have gone
// stale and exposes the count via the stale_draft_audits gauge.
type StaleDraftNotifier struct {
	auditRepo *repositories.AuditRepository
	cfg       *config.StaleDraftConfig
	interval  time.Duration
	threshold time.Duration
	stopChan  chan struct{}
}

// NewStaleDraftNotifier creates a new StaleDraftNotifier.
// check_interval_hours controls how often the count runs (default 6h);
// threshold_days controls how old an untouched draft must be to count as
// stale (default 14 days).
func NewStaleDraftNotifier(auditRepo *repositories.AuditRepository, cfg *config.StaleDraftConfig) *StaleDraftNotifier {
	hours := cfg.CheckIntervalHours
	if hours <= 0 {
		hours = 6
	}
	days := cfg.ThresholdDays
	if days <= 0 {
		days = 14
	}
	return &StaleDraftNotifier{
		auditRepo: auditRepo,
		cfg:       cfg,
		interval:  time.Duration(hours) * time.Hour,
		threshold: time.Duration(days) * 24 * time.Hour,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the background counting loop.
// It runs an initial count immediately, then repeats on the configured
// interval. The loop exits when ctx is cancelled or Stop() is called.
func (n *StaleDraftNotifier) Start(ctx context.Context) {
	if !n.cfg.Enabled {
		slog.Info("stale draft notifier disabled")
		return
	}

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	slog.Info("stale draft notifier started",
		"check_interval", n.interval, "threshold", n.threshold)

	// Run once immediately on startup
	n.runCount(ctx)

	for {
		select {
		case <-ticker.C:
			n.runCount(ctx)
		case <-n.stopChan:
			slog.Info("stale draft notifier stopped")
			return
		case <-ctx.Done():
			slog.Info("stale draft notifier context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (n *StaleDraftNotifier) Stop() {
	close(n.stopChan)
}

// runCount queries for stale drafts and updates the gauge.
func (n *StaleDraftNotifier) runCount(ctx context.Context) {
	cutoff := time.Now().Add(-n.threshold)

	count, err := n.auditRepo.CountStaleDrafts(ctx, cutoff)
	if err != nil {
		slog.Error("stale draft notifier failed to count drafts", "error", err)
		return
	}

	telemetry.StaleDraftsGauge.Set(float64(count))

	if count > 0 {
		slog.Warn("stale draft audits detected",
			"count", count, "untouched_since", cutoff.UTC().Format(time.RFC3339))
	}
}
