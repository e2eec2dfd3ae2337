package reliability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
)

// SampleWindow bounds how far back delay history is aggregated.
const SampleWindow = 30 * 24 * time.Hour

// Store reads and writes historical delay samples in Postgres.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool against the given DSN and verifies it.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening delay sample store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging delay sample store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the delay sample table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS delay_samples (
			id            BIGSERIAL PRIMARY KEY,
			route_id      TEXT        NOT NULL,
			trip_id       TEXT        NOT NULL,
			stop_id       TEXT        NOT NULL,
			delay_minutes DOUBLE PRECISION NOT NULL,
			recorded_at   TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS delay_samples_route_recorded_idx
			ON delay_samples (route_id, recorded_at);
	`)
	if err != nil {
		return fmt.Errorf("ensuring delay sample schema: %w", err)
	}
	return nil
}

// RecordSample persists one observed delay for later aggregation.
func (s *Store) RecordSample(ctx context.Context, routeID, tripID, stopID string, delayMinutes float64, recordedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delay_samples (route_id, trip_id, stop_id, delay_minutes, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, routeID, tripID, stopID, delayMinutes, recordedAt)
	if err != nil {
		return fmt.Errorf("recording delay sample: %w", err)
	}
	return nil
}

// LoadAggregates groups recent samples by route, time-of-day band and
// weekday class. On-time means a delay within five minutes either way of
// schedule, matching the delay categorization used elsewhere.
func (s *Store) LoadAggregates(ctx context.Context, now time.Time) ([]Aggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			route_id,
			CASE
				WHEN EXTRACT(HOUR FROM recorded_at) BETWEEN 6 AND 8 THEN 'morning_rush'
				WHEN EXTRACT(HOUR FROM recorded_at) BETWEEN 9 AND 14 THEN 'midday'
				WHEN EXTRACT(HOUR FROM recorded_at) BETWEEN 15 AND 18 THEN 'evening_rush'
				ELSE 'off_peak'
			END AS band,
			EXTRACT(ISODOW FROM recorded_at) >= 6 AS weekend,
			COUNT(*) AS sample_count,
			COUNT(*) FILTER (WHERE delay_minutes BETWEEN -5 AND 5) AS on_time_count,
			AVG(delay_minutes) AS average_delay,
			MAX(recorded_at) AS newest_sample
		FROM delay_samples
		WHERE recorded_at >= $1
		GROUP BY route_id, band, weekend
	`, now.Add(-SampleWindow))
	if err != nil {
		return nil, fmt.Errorf("loading delay aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []Aggregate
	for rows.Next() {
		var agg Aggregate
		var band string
		if err := rows.Scan(&agg.RouteID, &band, &agg.Weekend, &agg.SampleCount, &agg.OnTimeCount, &agg.AverageDelayMins, &agg.NewestSampleTaken); err != nil {
			return nil, fmt.Errorf("scanning delay aggregate: %w", err)
		}
		agg.Band = Band(band)
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delay aggregates: %w", err)
	}
	return aggregates, nil
}
