package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
)

// ErrRunNotFound is returned when no run exists for a request id.
var ErrRunNotFound = errors.New("run not found")

// RunRepository persists completed run snapshots for audit. Runs are
// immutable once saved; a duplicate request id overwrites nothing.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a run repository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save stores one run snapshot.
func (r *RunRepository) Save(ctx context.Context, rec *contracts.RunRecord) error {
	alertsJSON, err := json.Marshal(rec.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}
	scriptsJSON, err := json.Marshal(rec.Scripts)
	if err != nil {
		return fmt.Errorf("failed to marshal scripts: %w", err)
	}
	laddersJSON, err := json.Marshal(rec.Ladders)
	if err != nil {
		return fmt.Errorf("failed to marshal ladders: %w", err)
	}
	provJSON, err := json.Marshal(rec.Provenance)
	if err != nil {
		return fmt.Errorf("failed to marshal provenance: %w", err)
	}

	query := `
		INSERT INTO runs (
			request_id, home, away, mode, alerts, scripts, ladders,
			provenance, timing_ms, fallback, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (request_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		rec.RequestID, rec.Matchup.Home, rec.Matchup.Away, rec.Mode,
		alertsJSON, scriptsJSON, laddersJSON, provJSON,
		rec.TimingMS, rec.Fallback, rec.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Get retrieves one run snapshot by request id.
func (r *RunRepository) Get(ctx context.Context, requestID string) (*contracts.RunRecord, error) {
	query := `
		SELECT request_id, home, away, mode, alerts, scripts, ladders,
		       provenance, timing_ms, fallback, created_at
		FROM runs
		WHERE request_id = $1
	`

	var rec contracts.RunRecord
	var alertsJSON, scriptsJSON, laddersJSON, provJSON []byte

	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&rec.RequestID, &rec.Matchup.Home, &rec.Matchup.Away, &rec.Mode,
		&alertsJSON, &scriptsJSON, &laddersJSON, &provJSON,
		&rec.TimingMS, &rec.Fallback, &rec.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(alertsJSON, &rec.Alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}
	if err := json.Unmarshal(scriptsJSON, &rec.Scripts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scripts: %w", err)
	}
	if err := json.Unmarshal(laddersJSON, &rec.Ladders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ladders: %w", err)
	}
	if err := json.Unmarshal(provJSON, &rec.Provenance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provenance: %w", err)
	}

	return &rec, nil
}

// DeleteBefore removes runs created before the cutoff and returns the
// number deleted. Used by the cleanup job.
func (r *RunRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
