package quotes

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// ReconcileConfig holds reconciler configuration
type ReconcileConfig struct {
	Interval time.Duration
}

// Report counts what a reconciliation pass repaired
type Report struct {
	CountsFixed    int `json:"countsFixed"`
	OrdersFixed    int `json:"ordersFixed"`
	OrphansRemoved int `json:"orphansRemoved"`
}

// Changed reports whether the pass rewrote anything
func (r Report) Changed() bool {
	return r.CountsFixed+r.OrdersFixed+r.OrphansRemoved > 0
}

// Reconciler periodically repairs drift between the two collections
type Reconciler struct {
	book   *Book
	config ReconcileConfig
	logger *slog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(book *Book, config ReconcileConfig, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		book:   book,
		config: config,
		logger: logger,
	}
}

// Start runs a pass immediately and then on every interval until ctx is done.
// A non-positive interval runs the first pass only.
func (r *Reconciler) Start(ctx context.Context) error {
	r.logger.Info("starting reconciler", "interval", r.config.Interval)

	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.Error("initial reconciliation failed", "error", err)
	}

	if r.config.Interval <= 0 {
		<-ctx.Done()
		r.logger.Info("stopping reconciler")
		return ctx.Err()
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping reconciler")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("reconciliation failed", "error", err)
			}
		}
	}
}

// RunOnce recomputes every quote count, renumbers orders 0..n-1 and drops
// quotes whose category no longer exists. Nothing is written when both
// collections are already consistent.
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	c := r.book.c
	var report Report

	unlock, err := c.lock(ctx, CategoriesKey, QuotesKey)
	if err != nil {
		return report, err
	}
	defer unlock()

	cats, backfilled, err := c.loadCategories(ctx)
	if err != nil {
		return report, err
	}
	quotes, err := c.loadQuotes(ctx)
	if err != nil {
		return report, err
	}

	known := make(map[int64]int, len(cats))
	for _, cat := range cats {
		known[cat.ID] = 0
	}

	kept := slices.DeleteFunc(quotes, func(q Quote) bool {
		if _, ok := known[q.CategoryID]; !ok {
			return true
		}
		known[q.CategoryID]++
		return false
	})
	report.OrphansRemoved = len(quotes) - len(kept)

	sortByOrder(cats)
	for i := range cats {
		if cats[i].Order != i {
			cats[i].Order = i
			report.OrdersFixed++
		}
		if n := known[cats[i].ID]; cats[i].AmountOfQuotes != n {
			cats[i].AmountOfQuotes = n
			report.CountsFixed++
		}
	}

	var writeCats []Category
	if report.CountsFixed > 0 || report.OrdersFixed > 0 || backfilled {
		writeCats = nonNil(cats)
	}
	var writeQuotes []Quote
	if report.OrphansRemoved > 0 {
		writeQuotes = nonNil(kept)
	}
	if writeCats == nil && writeQuotes == nil {
		r.logger.Debug("collections consistent")
		return report, nil
	}

	if err := c.write(ctx, writeCats, writeQuotes); err != nil {
		return Report{}, err
	}

	r.logger.Info("reconciliation completed",
		"counts_fixed", report.CountsFixed,
		"orders_fixed", report.OrdersFixed,
		"orphans_removed", report.OrphansRemoved,
	)
	return report, nil
}
