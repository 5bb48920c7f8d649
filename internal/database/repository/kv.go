package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jask/codepad/internal/database"
)

// Snapshot is one historical value of a key.
type Snapshot struct {
	ID        string
	Key       string
	Value     string
	CreatedAt time.Time
}

// KVRepo is a string key/value table. With history enabled every Record also
// keeps a snapshot row, up to the newest keep rows per key.
type KVRepo struct {
	db   *sql.DB
	keep int
}

func NewKVRepo(db *sql.DB) *KVRepo { return &KVRepo{db: db} }

// WithHistory returns a copy of r that keeps up to keep snapshots per key.
func (r *KVRepo) WithHistory(keep int) *KVRepo {
	return &KVRepo{db: r.db, keep: keep}
}

func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key without touching history.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return upsert(ctx, tx, key, value, database.Now())
	})
}

// Record stores value under key like Set and, with history enabled, also
// keeps it as a snapshot row.
func (r *KVRepo) Record(ctx context.Context, key, value string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		now := database.Now()
		if err := upsert(ctx, tx, key, value, now); err != nil {
			return err
		}
		if r.keep <= 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots(id, key, value, created_at) VALUES (?, ?, ?, ?)
		`, uuid.NewString(), key, value, now); err != nil {
			return fmt.Errorf("record snapshot: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE key = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE key = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, key, key, r.keep); err != nil {
			return fmt.Errorf("trim snapshots: %w", err)
		}
		return nil
	})
}

func upsert(ctx context.Context, tx *sql.Tx, key, value string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO kv(key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
	`, key, value, now); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (r *KVRepo) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// History lists snapshots of key, newest first.
func (r *KVRepo) History(ctx context.Context, key string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, key, value, created_at FROM snapshots
	WHERE key = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Revision returns one snapshot by id, or nil when it does not exist.
func (r *KVRepo) Revision(ctx context.Context, id string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, key, value, created_at FROM snapshots WHERE id = ?`, id)
	var s Snapshot
	if err := row.Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
