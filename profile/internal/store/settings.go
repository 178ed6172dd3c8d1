package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SettingsRow is the stored form of the single settings record.
type SettingsRow struct {
	ActiveProfileID string
	AutoFill        bool
	Blacklist       string // JSON array of domains
}

// GetSettings retrieves the settings row. Returns (nil, nil) when the row
// has never been written.
func (s *Store) GetSettings(ctx context.Context) (*SettingsRow, error) {
	r := &SettingsRow{}
	var autoFill int
	err := s.DB.QueryRowContext(ctx, `
		SELECT active_profile_id, auto_fill, blacklist FROM settings WHERE id = 1`).Scan(
		&r.ActiveProfileID, &autoFill, &r.Blacklist,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.AutoFill = autoFill != 0
	return r, nil
}

// PutSettings upserts the settings row.
func (s *Store) PutSettings(ctx context.Context, r *SettingsRow) error {
	autoFill := 0
	if r.AutoFill {
		autoFill = 1
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO settings (id, active_profile_id, auto_fill, blacklist, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active_profile_id = excluded.active_profile_id,
			auto_fill         = excluded.auto_fill,
			blacklist         = excluded.blacklist,
			updated_at        = excluded.updated_at`,
		r.ActiveProfileID, autoFill, r.Blacklist, time.Now().UnixMilli(),
	)
	return err
}
