package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/repository"
)

type kvRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new KVRepository implementation
func NewKVRepository(db *sql.DB) repository.KVRepository {
	return &kvRepository{db: db}
}

func (r *kvRepository) Get(ctx context.Context, profileID int64, key string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("getting value: profile_id=%d key=%s", profileID, key)

	var value []byte
	err := r.db.QueryRowContext(ctx, `
SELECT value FROM kv_store
WHERE profile_id = ? AND key = ?
`, profileID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("value not set: profile_id=%d key=%s", profileID, key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get value: %v", err)
		return nil, err
	}
	return value, nil
}

func (r *kvRepository) Put(ctx context.Context, profileID int64, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("putting value: profile_id=%d key=%s bytes=%d", profileID, key, len(value))

	_, err := r.db.ExecContext(ctx, `
INSERT INTO kv_store (profile_id, key, value, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile_id, key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at
`, profileID, key, value)
	if err != nil {
		log.Error("failed to put value: %v", err)
	}
	return err
}

func (r *kvRepository) Delete(ctx context.Context, profileID int64, key string) error {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("deleting value: profile_id=%d key=%s", profileID, key)

	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE profile_id = ? AND key = ?`, profileID, key)
	if err != nil {
		log.Error("failed to delete value: %v", err)
	}
	return err
}
