package callconfig

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo stores one row per slot in call_configurations.
// The payload column holds the JSON record verbatim; schema handling
// (including legacy migration) stays in Service so all repositories
// behave identically.
type PostgresRepo struct {
	db *sql.DB

	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

// EnsureSchema creates the backing table if it does not exist.
// Called once at startup; safe to call repeatedly.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errors.New("callconfig: db is nil")
	}
	const q = `
CREATE TABLE IF NOT EXISTS call_configurations (
    slot_id    TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *PostgresRepo) Put(ctx context.Context, slotID string, data []byte) error {
	if r.db == nil {
		return errors.New("callconfig: db is nil")
	}
	const q = `
INSERT INTO call_configurations (slot_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (slot_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`
	_, err := r.db.ExecContext(ctx, q, slotID, data, r.clock().UTC())
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, slotID string) ([]byte, bool, error) {
	if r.db == nil {
		return nil, false, errors.New("callconfig: db is nil")
	}
	const q = `
SELECT payload
FROM call_configurations
WHERE slot_id = $1
`
	var data []byte
	if err := r.db.QueryRowContext(ctx, q, slotID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, slotID string) error {
	if r.db == nil {
		return errors.New("callconfig: db is nil")
	}
	const q = `
DELETE FROM call_configurations
WHERE slot_id = $1
`
	_, err := r.db.ExecContext(ctx, q, slotID)
	return err
}
