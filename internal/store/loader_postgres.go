package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/dailyerosion/depserver/internal/model"
)

var resultColumns = []string{
	"huc_12", "scenario", "valid",
	"qc_precip", "avg_runoff", "avg_loss", "avg_delivery",
}

// LoadResults bulk-appends daily result rows via the COPY protocol.
func (s *PostgresStore) LoadResults(ctx context.Context, results []model.DailyResult) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{
			r.HUC12, r.Scenario, r.Valid,
			r.QCPrecip, r.AvgRunoff, r.AvgLoss, r.AvgDelivery,
		})
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"results_by_huc12"}, resultColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy results")
	}
	return n, nil
}

// ReplaceWatersheds reloads the huc12 lookup rows for one scenario. Delete
// and COPY run in a single transaction; the upstream tables carry no unique
// constraint, so a wholesale swap is the only safe reload.
func (s *PostgresStore) ReplaceWatersheds(ctx context.Context, scenario int, sheds []model.Watershed) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace watersheds begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM huc12 WHERE scenario = $1`, scenario); err != nil {
		return 0, eris.Wrap(err, "postgres: replace watersheds delete")
	}

	rows := make([][]any, 0, len(sheds))
	for _, ws := range sheds {
		rows = append(rows, []any{ws.HUC12, scenario, ws.Name})
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"huc12"}, []string{"huc_12", "scenario", "name"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy watersheds")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: replace watersheds commit")
	}
	return n, nil
}
