// Package store provides the read surface the report pages consume, with
// PostgreSQL and SQLite implementations behind a common interface.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dailyerosion/depserver/internal/model"
)

// Sentinel errors for the watershed lookup, which must match exactly one row.
var (
	ErrWatershedNotFound  = eris.New("watershed not found")
	ErrWatershedAmbiguous = eris.New("watershed lookup matched multiple rows")
)

// TopEventsFloor is the exclusive lower bound on event dates. Rows dated on
// or before it never appear in the top-events listing; results before 2007
// predate the current model baseline.
var TopEventsFloor = time.Date(2007, time.January, 1, 0, 0, 0, 0, time.UTC)

// Aggregation floors for the supplementary summary tables.
var (
	YearlySummaryFloor  = time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC)
	MonthlySummaryFloor = time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// HeavyPrecipMM is the daily precipitation threshold (2 inches, in mm) used
// for the heavy-precip day counts in the yearly and monthly summaries.
const HeavyPrecipMM = 50.8

// Store defines the read operations backing the report pages.
type Store interface {
	// GetWatershed resolves the display name for a (huc12, scenario) pair.
	// Exactly one row must match: zero rows returns ErrWatershedNotFound,
	// more than one returns ErrWatershedAmbiguous.
	GetWatershed(ctx context.Context, huc12 string, scenario int) (*model.Watershed, error)

	// SummarizeRange sums qc_precip, avg_runoff, avg_loss, and avg_delivery
	// over valid dates in [start, end] inclusive. No matching rows is not an
	// error; all four sums come back zero.
	SummarizeRange(ctx context.Context, huc12 string, scenario int, start, end time.Time) (*model.RangeSummary, error)

	// TopEvents returns up to limit days ordered by avg_loss descending,
	// considering only rows dated after TopEventsFloor with strictly
	// positive loss. Tie order among equal losses is the store's natural
	// order and is not specified further.
	TopEvents(ctx context.Context, huc12 string, scenario int, limit int) ([]model.LossEvent, error)

	// YearlySummaries returns per-year aggregates since YearlySummaryFloor.
	// An 8-character huc averages across the HUC8's member HUC12s.
	YearlySummaries(ctx context.Context, huc string, scenario int) ([]model.YearlySummary, error)

	// MonthlySummaries returns per-month aggregates since
	// MonthlySummaryFloor, with the same HUC8 handling as YearlySummaries.
	MonthlySummaries(ctx context.Context, huc string, scenario int) ([]model.MonthlySummary, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Loader is the bulk write surface used by the load command. Both stores
// implement it alongside Store.
type Loader interface {
	// LoadResults appends daily result rows. Postgres uses the COPY protocol.
	LoadResults(ctx context.Context, rows []model.DailyResult) (int64, error)

	// ReplaceWatersheds swaps out the huc12 lookup rows for one scenario in a
	// single transaction, so concurrent readers never see a half-loaded table.
	ReplaceWatersheds(ctx context.Context, scenario int, sheds []model.Watershed) (int64, error)
}
