package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dailyerosion/depserver/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs small
// standalone deployments and tests; dates are stored as ISO-8601 text.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteDate = "2006-01-02"

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS huc12 (
	huc_12   TEXT NOT NULL,
	scenario INTEGER NOT NULL DEFAULT 0,
	name     TEXT NOT NULL,
	states   TEXT
);

CREATE INDEX IF NOT EXISTS idx_huc12_code ON huc12(huc_12, scenario);

CREATE TABLE IF NOT EXISTS results_by_huc12 (
	huc_12       TEXT NOT NULL,
	scenario     INTEGER NOT NULL DEFAULT 0,
	valid        TEXT NOT NULL,
	qc_precip    REAL,
	avg_runoff   REAL,
	avg_loss     REAL,
	avg_delivery REAL
);

CREATE INDEX IF NOT EXISTS idx_results_code ON results_by_huc12(huc_12, scenario, valid);
CREATE INDEX IF NOT EXISTS idx_results_loss ON results_by_huc12(huc_12, scenario, avg_loss DESC);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetWatershed(ctx context.Context, huc12 string, scenario int) (*model.Watershed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM huc12 WHERE huc_12 = ? AND scenario = ?`,
		huc12, scenario,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get watershed %s", huc12)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan watershed")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: get watershed %s iterate", huc12)
	}

	switch len(names) {
	case 0:
		return nil, ErrWatershedNotFound
	case 1:
		return &model.Watershed{HUC12: huc12, Name: names[0], Scenario: scenario}, nil
	default:
		return nil, ErrWatershedAmbiguous
	}
}

func (s *SQLiteStore) SummarizeRange(ctx context.Context, huc12 string, scenario int, start, end time.Time) (*model.RangeSummary, error) {
	var sum model.RangeSummary
	err := s.db.QueryRowContext(ctx,
		`SELECT coalesce(sum(qc_precip), 0),
       coalesce(sum(avg_runoff), 0),
       coalesce(sum(avg_loss), 0),
       coalesce(sum(avg_delivery), 0)
  FROM results_by_huc12
 WHERE huc_12 = ? AND scenario = ? AND valid >= ? AND valid <= ?`,
		huc12, scenario, start.Format(sqliteDate), end.Format(sqliteDate),
	).Scan(&sum.Precip, &sum.Runoff, &sum.Loss, &sum.Delivery)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: summarize %s", huc12)
	}
	return &sum, nil
}

func (s *SQLiteStore) TopEvents(ctx context.Context, huc12 string, scenario int, limit int) ([]model.LossEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT valid, avg_loss
  FROM results_by_huc12
 WHERE huc_12 = ? AND scenario = ? AND valid > ? AND avg_loss > 0
 ORDER BY avg_loss DESC
 LIMIT ?`,
		huc12, scenario, TopEventsFloor.Format(sqliteDate), limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: top events %s", huc12)
	}
	defer rows.Close()

	var events []model.LossEvent
	for rows.Next() {
		var valid string
		var loss float64
		if err := rows.Scan(&valid, &loss); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		date, err := time.Parse(sqliteDate, valid)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse event date %s", valid)
		}
		events = append(events, model.LossEvent{Date: date, Loss: loss})
	}
	return events, eris.Wrapf(rows.Err(), "sqlite: top events %s iterate", huc12)
}

func (s *SQLiteStore) YearlySummaries(ctx context.Context, huc string, scenario int) ([]model.YearlySummary, error) {
	query := fmt.Sprintf(`WITH data AS (
    SELECT CAST(strftime('%%Y', valid) AS INTEGER) AS year, huc_12,
           sum(qc_precip) / 25.4 AS precip,
           sum(avg_runoff) / 25.4 AS runoff,
           sum(avg_loss) * 4.463 AS loss,
           sum(avg_delivery) * 4.463 AS delivery,
           sum(CASE WHEN qc_precip >= %v THEN 1 ELSE 0 END) AS heavy_days,
           sum(CASE WHEN avg_loss > 0 THEN 1 ELSE 0 END) AS event_days
      FROM results_by_huc12
     WHERE scenario = ? AND %s = ? AND valid >= ?
     GROUP BY year, huc_12)
SELECT year, avg(precip), avg(runoff), avg(loss), avg(delivery),
       avg(heavy_days), avg(event_days)
  FROM data GROUP BY year ORDER BY year`, HeavyPrecipMM, hucColumn(huc))

	rows, err := s.db.QueryContext(ctx, query, scenario, huc, YearlySummaryFloor.Format(sqliteDate))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: yearly summaries %s", huc)
	}
	defer rows.Close()

	var out []model.YearlySummary
	for rows.Next() {
		var y model.YearlySummary
		if err := rows.Scan(&y.Year, &y.Precip, &y.Runoff, &y.Loss, &y.Delivery,
			&y.HeavyPrecipDays, &y.EventDays); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan yearly summary")
		}
		out = append(out, y)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: yearly summaries %s iterate", huc)
}

func (s *SQLiteStore) MonthlySummaries(ctx context.Context, huc string, scenario int) ([]model.MonthlySummary, error) {
	query := fmt.Sprintf(`WITH data AS (
    SELECT CAST(strftime('%%Y', valid) AS INTEGER) AS year,
           CAST(strftime('%%m', valid) AS INTEGER) AS month, huc_12,
           sum(qc_precip) / 25.4 AS precip,
           sum(avg_runoff) / 25.4 AS runoff,
           sum(avg_loss) * 4.463 AS loss,
           sum(avg_delivery) * 4.463 AS delivery,
           sum(CASE WHEN qc_precip >= %v THEN 1 ELSE 0 END) AS heavy_days,
           sum(CASE WHEN avg_loss > 0 THEN 1 ELSE 0 END) AS event_days
      FROM results_by_huc12
     WHERE scenario = ? AND %s = ? AND valid >= ?
     GROUP BY year, month, huc_12)
SELECT year, month, avg(precip), avg(runoff), avg(loss), avg(delivery),
       avg(heavy_days), avg(event_days)
  FROM data GROUP BY year, month ORDER BY year, month`, HeavyPrecipMM, hucColumn(huc))

	rows, err := s.db.QueryContext(ctx, query, scenario, huc, MonthlySummaryFloor.Format(sqliteDate))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: monthly summaries %s", huc)
	}
	defer rows.Close()

	var out []model.MonthlySummary
	for rows.Next() {
		var m model.MonthlySummary
		if err := rows.Scan(&m.Year, &m.Month, &m.Precip, &m.Runoff, &m.Loss,
			&m.Delivery, &m.HeavyPrecipDays, &m.EventDays); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan monthly summary")
		}
		out = append(out, m)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: monthly summaries %s iterate", huc)
}
