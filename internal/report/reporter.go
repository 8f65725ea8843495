package report

import (
	"context"
	"io"

	"github.com/dailyerosion/depserver/internal/store"
)

// topEventsLimit caps the ranked event listing on the summary page.
const topEventsLimit = 10

// Reporter runs the report queries against a Store and renders the results.
type Reporter struct {
	store    store.Store
	renderer *Renderer
}

// NewReporter binds a store to a renderer.
func NewReporter(st store.Store, r *Renderer) *Reporter {
	return &Reporter{store: st, renderer: r}
}

// Summary resolves the watershed, sums the date range, fetches the top loss
// events, and writes the summary fragment. The watershed lookup runs first so
// its sentinel errors surface before any aggregation work.
func (rp *Reporter) Summary(ctx context.Context, w io.Writer, p Params) error {
	ws, err := rp.store.GetWatershed(ctx, p.HUC12, p.Scenario)
	if err != nil {
		return err
	}

	sum, err := rp.store.SummarizeRange(ctx, p.HUC12, p.Scenario, p.Start, p.End)
	if err != nil {
		return err
	}

	events, err := rp.store.TopEvents(ctx, p.HUC12, p.Scenario, topEventsLimit)
	if err != nil {
		return err
	}

	return rp.renderer.Summary(w, rp.renderer.buildSummaryView(ws, sum, events, p))
}

// Yearly writes the per-year aggregate table for a HUC12 or HUC8 code.
func (rp *Reporter) Yearly(ctx context.Context, w io.Writer, huc string, scenario int) error {
	years, err := rp.store.YearlySummaries(ctx, huc, scenario)
	if err != nil {
		return err
	}
	return rp.renderer.Period(w, rp.renderer.buildYearlyView(huc, years))
}

// Monthly writes the per-month aggregate table for a HUC12 or HUC8 code.
func (rp *Reporter) Monthly(ctx context.Context, w io.Writer, huc string, scenario int) error {
	months, err := rp.store.MonthlySummaries(ctx, huc, scenario)
	if err != nil {
		return err
	}
	return rp.renderer.Period(w, rp.renderer.buildMonthlyView(huc, months))
}
