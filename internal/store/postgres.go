package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dailyerosion/depserver/internal/db"
	"github.com/dailyerosion/depserver/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the report's hot path.
var preparedStatements = map[string]string{
	"get_watershed": `SELECT name FROM huc12 WHERE huc_12 = $1 AND scenario = $2`,
	"summarize_range": `SELECT coalesce(sum(qc_precip), 0)::float8,
       coalesce(sum(avg_runoff), 0)::float8,
       coalesce(sum(avg_loss), 0)::float8,
       coalesce(sum(avg_delivery), 0)::float8
  FROM results_by_huc12
 WHERE huc_12 = $1 AND scenario = $2 AND valid >= $3 AND valid <= $4`,
	"top_events": `SELECT valid, avg_loss::float8
  FROM results_by_huc12
 WHERE huc_12 = $1 AND scenario = $2 AND valid > $3 AND avg_loss > 0
 ORDER BY avg_loss DESC
 LIMIT $4`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare the report statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// postgresMigration creates the read surface consumed by the report pages.
// Production tables are owned by the upstream data-management system; this
// DDL exists for dev and test databases and deliberately carries no unique
// constraints, matching the upstream tables.
const postgresMigration = `
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
	valid        DATE NOT NULL,
	qc_precip    DOUBLE PRECISION,
	avg_runoff   DOUBLE PRECISION,
	avg_loss     DOUBLE PRECISION,
	avg_delivery DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_results_code ON results_by_huc12(huc_12, scenario, valid);
CREATE INDEX IF NOT EXISTS idx_results_loss ON results_by_huc12(huc_12, scenario, avg_loss DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetWatershed(ctx context.Context, huc12 string, scenario int) (*model.Watershed, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name FROM huc12 WHERE huc_12 = $1 AND scenario = $2`,
		huc12, scenario,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get watershed %s", huc12)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan watershed")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: get watershed %s iterate", huc12)
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

func (s *PostgresStore) SummarizeRange(ctx context.Context, huc12 string, scenario int, start, end time.Time) (*model.RangeSummary, error) {
	var sum model.RangeSummary
	err := s.pool.QueryRow(ctx,
		`SELECT coalesce(sum(qc_precip), 0)::float8,
       coalesce(sum(avg_runoff), 0)::float8,
       coalesce(sum(avg_loss), 0)::float8,
       coalesce(sum(avg_delivery), 0)::float8
  FROM results_by_huc12
 WHERE huc_12 = $1 AND scenario = $2 AND valid >= $3 AND valid <= $4`,
		huc12, scenario, start, end,
	).Scan(&sum.Precip, &sum.Runoff, &sum.Loss, &sum.Delivery)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: summarize %s", huc12)
	}
	return &sum, nil
}

func (s *PostgresStore) TopEvents(ctx context.Context, huc12 string, scenario int, limit int) ([]model.LossEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT valid, avg_loss::float8
  FROM results_by_huc12
 WHERE huc_12 = $1 AND scenario = $2 AND valid > $3 AND avg_loss > 0
 ORDER BY avg_loss DESC
 LIMIT $4`,
		huc12, scenario, TopEventsFloor, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: top events %s", huc12)
	}
	defer rows.Close()

	var events []model.LossEvent
	for rows.Next() {
		var ev model.LossEvent
		if err := rows.Scan(&ev.Date, &ev.Loss); err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		events = append(events, ev)
	}
	return events, eris.Wrapf(rows.Err(), "postgres: top events %s iterate", huc12)
}

// hucColumn selects the grouping column for the summary aggregations: an
// 8-character code aggregates the whole HUC8 by prefix, as the PDF report
// queries do.
func hucColumn(huc string) string {
	if len(huc) == 8 {
		return "substr(huc_12, 1, 8)"
	}
	return "huc_12"
}

func (s *PostgresStore) YearlySummaries(ctx context.Context, huc string, scenario int) ([]model.YearlySummary, error) {
	query := fmt.Sprintf(`WITH data AS (
    SELECT extract(year from valid)::int AS year, huc_12,
           sum(qc_precip) / 25.4 AS precip,
           sum(avg_runoff) / 25.4 AS runoff,
           sum(avg_loss) * 4.463 AS loss,
           sum(avg_delivery) * 4.463 AS delivery,
           sum(CASE WHEN qc_precip >= %v THEN 1 ELSE 0 END) AS heavy_days,
           sum(CASE WHEN avg_loss > 0 THEN 1 ELSE 0 END) AS event_days
      FROM results_by_huc12
     WHERE scenario = $2 AND %s = $1 AND valid >= $3
     GROUP BY year, huc_12)
SELECT year, avg(precip)::float8, avg(runoff)::float8, avg(loss)::float8,
       avg(delivery)::float8, avg(heavy_days)::float8, avg(event_days)::float8
  FROM data GROUP BY year ORDER BY year`, HeavyPrecipMM, hucColumn(huc))

	rows, err := s.pool.Query(ctx, query, huc, scenario, YearlySummaryFloor)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: yearly summaries %s", huc)
	}
	defer rows.Close()

	var out []model.YearlySummary
	for rows.Next() {
		var y model.YearlySummary
		if err := rows.Scan(&y.Year, &y.Precip, &y.Runoff, &y.Loss, &y.Delivery,
			&y.HeavyPrecipDays, &y.EventDays); err != nil {
			return nil, eris.Wrap(err, "postgres: scan yearly summary")
		}
		out = append(out, y)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: yearly summaries %s iterate", huc)
}

func (s *PostgresStore) MonthlySummaries(ctx context.Context, huc string, scenario int) ([]model.MonthlySummary, error) {
	query := fmt.Sprintf(`WITH data AS (
    SELECT extract(year from valid)::int AS year,
           extract(month from valid)::int AS month, huc_12,
           sum(qc_precip) / 25.4 AS precip,
           sum(avg_runoff) / 25.4 AS runoff,
           sum(avg_loss) * 4.463 AS loss,
           sum(avg_delivery) * 4.463 AS delivery,
           sum(CASE WHEN qc_precip >= %v THEN 1 ELSE 0 END) AS heavy_days,
           sum(CASE WHEN avg_loss > 0 THEN 1 ELSE 0 END) AS event_days
      FROM results_by_huc12
     WHERE scenario = $2 AND %s = $1 AND valid >= $3
     GROUP BY year, month, huc_12)
SELECT year, month, avg(precip)::float8, avg(runoff)::float8, avg(loss)::float8,
       avg(delivery)::float8, avg(heavy_days)::float8, avg(event_days)::float8
  FROM data GROUP BY year, month ORDER BY year, month`, HeavyPrecipMM, hucColumn(huc))

	rows, err := s.pool.Query(ctx, query, huc, scenario, MonthlySummaryFloor)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: monthly summaries %s", huc)
	}
	defer rows.Close()

	var out []model.MonthlySummary
	for rows.Next() {
		var m model.MonthlySummary
		if err := rows.Scan(&m.Year, &m.Month, &m.Precip, &m.Runoff, &m.Loss,
			&m.Delivery, &m.HeavyPrecipDays, &m.EventDays); err != nil {
			return nil, eris.Wrap(err, "postgres: scan monthly summary")
		}
		out = append(out, m)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: monthly summaries %s iterate", huc)
}
