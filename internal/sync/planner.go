package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ticketehq/inventory-sync/internal/provider"
	"github.com/ticketehq/inventory-sync/pkg/config"
	"github.com/ticketehq/inventory-sync/pkg/logger"
	"github.com/ticketehq/inventory-sync/pkg/metrics"
)

// Horizon lengths, in days, for the scheduled refresh cadences.
const (
	HorizonToday = 1
	HorizonWeek  = 7
	HorizonMonth = 30
)

// Pair outcome labels recorded on the sync metrics.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// fetcher pulls availability for one (product, date) pair from upstream.
type fetcher interface {
	FetchAvailability(ctx context.Context, productID int, date time.Time) ([]provider.SlotData, error)
}

// reconciler merges fetched availability into storage.
type reconciler interface {
	Reconcile(ctx context.Context, productID int, date time.Time, slots []provider.SlotData) error
}

// PlannerParams groups dependencies for the sync planner.
type PlannerParams struct {
	Fetcher    fetcher
	Reconciler reconciler
	Rules      []config.ProductRule
	Logger     *logger.Logger
	Metrics    *metrics.SyncJobMetrics
	Now        func() time.Time
}

// Planner walks a horizon of upcoming dates and refreshes every eligible
// (product, date) pair. Eligibility is per product: a product is synced
// for a date only when that date's weekday is in the product's configured
// weekday list.
type Planner struct {
	fetcher    fetcher
	reconciler reconciler
	rules      []config.ProductRule
	logg       *logger.Logger
	metrics    *metrics.SyncJobMetrics
	now        func() time.Time
}

// NewPlanner builds a planner with the required dependencies.
func NewPlanner(params PlannerParams) (*Planner, error) {
	if params.Fetcher == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	if len(params.Rules) == 0 {
		return nil, fmt.Errorf("at least one product rule required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Planner{
		fetcher:    params.Fetcher,
		reconciler: params.Reconciler,
		rules:      params.Rules,
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

// SyncHorizon refreshes availability for the next `days` calendar days
// starting today. Each (product, date) pair is fetched and reconciled
// independently: a failing pair is logged, counted, and folded into the
// combined error, and the remaining pairs still run.
func (p *Planner) SyncHorizon(ctx context.Context, job string, days int) error {
	if days <= 0 {
		return fmt.Errorf("horizon days must be positive, got %d", days)
	}
	logCtx := p.logg.WithJob(ctx, job)
	logCtx = p.logg.WithField(logCtx, "days", days)
	p.logg.Info(logCtx, "horizon sync starting")

	today := p.now().UTC().Truncate(24 * time.Hour)

	var errs []error
	pairs := 0
	for offset := 0; offset < days; offset++ {
		day := today.AddDate(0, 0, offset)
		for _, rule := range p.rules {
			if !rule.SyncableOn(day.Weekday()) {
				continue
			}
			pairs++
			if err := p.syncPair(ctx, rule.ProductID, day); err != nil {
				p.recordPair(job, OutcomeError)
				pairCtx := p.logg.WithProduct(logCtx, rule.ProductID)
				pairCtx = p.logg.WithDate(pairCtx, day.Format("2006-01-02"))
				p.logg.Error(pairCtx, "pair sync failed", err)
				errs = append(errs, fmt.Errorf("product %d date %s: %w",
					rule.ProductID, day.Format("2006-01-02"), err))
				continue
			}
			p.recordPair(job, OutcomeOK)
		}
	}

	logCtx = p.logg.WithFields(logCtx, map[string]any{
		"pairs":  pairs,
		"failed": len(errs),
	})
	p.logg.Info(logCtx, "horizon sync complete")
	return multierr.Combine(errs...)
}

func (p *Planner) syncPair(ctx context.Context, productID int, day time.Time) error {
	slots, err := p.fetcher.FetchAvailability(ctx, productID, day)
	if err != nil {
		return err
	}
	return p.reconciler.Reconcile(ctx, productID, day, slots)
}

func (p *Planner) recordPair(job, outcome string) {
	if p.metrics == nil {
		return
	}
	p.metrics.IncPair(job, outcome)
}
