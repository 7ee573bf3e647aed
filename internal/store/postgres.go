package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/refractometer"
)

var postgresSchema = []string{`
CREATE TABLE IF NOT EXISTS calibration_points (
	position INTEGER PRIMARY KEY,
	actual DOUBLE PRECISION NOT NULL,
	target DOUBLE PRECISION NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS last_input (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	model INTEGER NOT NULL,
	initial_brix TEXT NOT NULL,
	final_brix TEXT NOT NULL,
	correction_factor TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
}

// PostgresStore persists to PostgreSQL through the pgx database/sql driver
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenPostgres connects to dsn and creates the tables if they are missing
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, apierrors.NewConfigError("postgres store needs a DSN", nil)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to open database", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s := NewPostgresStore(db, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an open database handle
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the store tables
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("postgres store: nil db")
	}
	for _, stmt := range postgresSchema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return apierrors.NewStorageError("failed to create schema", err)
		}
	}
	return nil
}

func (p *PostgresStore) LoadPoints(ctx context.Context) ([]refractometer.CalibrationPoint, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("postgres store: nil db")
	}
	rows, err := p.db.QueryContext(ctx, `
SELECT actual, target
FROM calibration_points
ORDER BY position ASC`)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to query calibration points", err)
	}
	defer rows.Close()

	points := []refractometer.CalibrationPoint{}
	for rows.Next() {
		var pt refractometer.CalibrationPoint
		if err := rows.Scan(&pt.Actual, &pt.Target); err != nil {
			return nil, apierrors.NewStorageError("failed to scan calibration point", err)
		}
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, apierrors.NewStorageError("failed to read calibration points", err)
	}
	return points, nil
}

// SavePoints replaces the stored collection in one transaction
func (p *PostgresStore) SavePoints(ctx context.Context, points []refractometer.CalibrationPoint) error {
	if p == nil || p.db == nil {
		return errors.New("postgres store: nil db")
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM calibration_points`); err != nil {
		return apierrors.NewStorageError("failed to clear calibration points", err)
	}
	for i, pt := range points {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO calibration_points (position, actual, target)
VALUES ($1, $2, $3)`, i, pt.Actual, pt.Target); err != nil {
			return apierrors.NewStorageError("failed to insert calibration point", err).
				With("position", i)
		}
	}
	if err := tx.Commit(); err != nil {
		return apierrors.NewStorageError("failed to commit calibration points", err)
	}

	p.logger.DebugContext(ctx, "calibration points saved", slog.Int("points", len(points)))
	return nil
}

func (p *PostgresStore) LoadLastInput(ctx context.Context) (LastInput, bool, error) {
	if p == nil || p.db == nil {
		return LastInput{}, false, errors.New("postgres store: nil db")
	}
	row := p.db.QueryRowContext(ctx, `
SELECT model, initial_brix, final_brix, correction_factor, updated_at
FROM last_input
WHERE id = 1`)

	var (
		last  LastInput
		model int
	)
	if err := row.Scan(
		&model,
		&last.Input.InitialBrix,
		&last.Input.FinalBrix,
		&last.Input.CorrectionFactor,
		&last.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LastInput{}, false, nil
		}
		return LastInput{}, false, apierrors.NewStorageError("failed to load last input", err)
	}
	last.Input.Model = refractometer.ModelID(model)
	last.UpdatedAt = last.UpdatedAt.UTC()
	return last, true, nil
}

func (p *PostgresStore) SaveLastInput(ctx context.Context, in refractometer.EstimationInput) error {
	if p == nil || p.db == nil {
		return errors.New("postgres store: nil db")
	}
	_, err := p.db.ExecContext(ctx, `
INSERT INTO last_input (id, model, initial_brix, final_brix, correction_factor, updated_at)
VALUES (1, $1, $2, $3, $4, $5)
ON CONFLICT (id)
DO UPDATE SET
	model = EXCLUDED.model,
	initial_brix = EXCLUDED.initial_brix,
	final_brix = EXCLUDED.final_brix,
	correction_factor = EXCLUDED.correction_factor,
	updated_at = EXCLUDED.updated_at`,
		int(in.Model), in.InitialBrix, in.FinalBrix, in.CorrectionFactor, time.Now().UTC(),
	)
	if err != nil {
		return apierrors.NewStorageError("failed to save last input", err)
	}
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("postgres store: nil db")
	}
	return p.db.PingContext(ctx)
}

func (p *PostgresStore) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
