package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dailyerosion/depserver/internal/model"
)

// LoadResults appends daily result rows inside a single transaction.
func (s *SQLiteStore) LoadResults(ctx context.Context, results []model.DailyResult) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: load results begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results_by_huc12
		 (huc_12, scenario, valid, qc_precip, avg_runoff, avg_loss, avg_delivery)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: load results prepare")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			r.HUC12, r.Scenario, r.Valid.Format(sqliteDate),
			r.QCPrecip, r.AvgRunoff, r.AvgLoss, r.AvgDelivery); err != nil {
			return 0, eris.Wrapf(err, "sqlite: load result %s %s", r.HUC12, r.Valid.Format(sqliteDate))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: load results commit")
	}
	return int64(len(results)), nil
}

// ReplaceWatersheds swaps out the huc12 lookup rows for one scenario.
func (s *SQLiteStore) ReplaceWatersheds(ctx context.Context, scenario int, sheds []model.Watershed) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace watersheds begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM huc12 WHERE scenario = ?`, scenario); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace watersheds delete")
	}

	for _, ws := range sheds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO huc12 (huc_12, scenario, name) VALUES (?, ?, ?)`,
			ws.HUC12, scenario, ws.Name); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert watershed %s", ws.HUC12)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace watersheds commit")
	}
	return int64(len(sheds)), nil
}
