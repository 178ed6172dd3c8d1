package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Row is the stored form of a profile. Attributes and Custom are JSON
// objects; the parent package converts to and from its typed Profile.
type Row struct {
	ID         string
	Name       string
	Attributes string // JSON object
	Custom     string // JSON object
	CreatedAt  int64
	UpdatedAt  int64
}

// InsertProfile inserts a new profile row.
func (s *Store) InsertProfile(ctx context.Context, r *Row) error {
	now := time.Now().UnixMilli()
	if r.CreatedAt == 0 {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, name, attributes, custom, created_at, updated_at)
		VALUES (?,?,?,?,?,?)`,
		r.ID, r.Name, r.Attributes, r.Custom, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// UpdateProfile overwrites an existing profile row.
func (s *Store) UpdateProfile(ctx context.Context, r *Row) error {
	r.UpdatedAt = time.Now().UnixMilli()
	res, err := s.DB.ExecContext(ctx, `
		UPDATE profiles SET name = ?, attributes = ?, custom = ?, updated_at = ?
		WHERE id = ?`,
		r.Name, r.Attributes, r.Custom, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetProfile retrieves a profile row by ID. Returns (nil, nil) when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*Row, error) {
	r := &Row{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, attributes, custom, created_at, updated_at
		FROM profiles WHERE id = ?`, id).Scan(
		&r.ID, &r.Name, &r.Attributes, &r.Custom, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListProfiles lists all profile rows, most recently updated first.
func (s *Store) ListProfiles(ctx context.Context) ([]*Row, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, attributes, custom, created_at, updated_at
		FROM profiles ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Row
	for rows.Next() {
		r := &Row{}
		if err := rows.Scan(&r.ID, &r.Name, &r.Attributes, &r.Custom, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteProfile removes a profile row.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return err
}
