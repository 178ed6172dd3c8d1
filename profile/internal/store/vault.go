package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetPassHash retrieves the stored passphrase hash, or nil when no
// passphrase has been set.
func (s *Store) GetPassHash(ctx context.Context) ([]byte, error) {
	var hash []byte
	err := s.DB.QueryRowContext(ctx, `SELECT pass_hash FROM vault WHERE id = 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return hash, nil
}

// PutPassHash upserts the passphrase hash.
func (s *Store) PutPassHash(ctx context.Context, hash []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO vault (id, pass_hash, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pass_hash = excluded.pass_hash,
			updated_at = excluded.updated_at`,
		hash, time.Now().UnixMilli(),
	)
	return err
}
