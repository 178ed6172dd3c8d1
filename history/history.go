// Package history keeps a local audit trail of fill invocations: which
// page, which profile, how many fields were written, and whether the run
// succeeded. Values written into forms are never stored here.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/formfill/dbopen"
	"github.com/hazyhaar/formfill/idgen"
)

// Event is one recorded fill invocation.
type Event struct {
	ID          string `json:"id"`
	PageURL     string `json:"page_url"`
	Host        string `json:"host"`
	ProfileID   string `json:"profile_id,omitempty"`
	Action      string `json:"action"`
	FieldCount  int    `json:"field_count"`
	MatchCount  int    `json:"match_count"`
	FilledCount int    `json:"filled_count"`
	Message     string `json:"message,omitempty"`
	Success     bool   `json:"success"`
	CreatedAt   int64  `json:"created_at"`
}

// Log writes and reads fill events.
type Log struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithIDGenerator sets a custom ID generator for event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Log) { l.newID = gen }
}

// WithLogger sets a custom logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Log) { l.logger = lg }
}

// Open opens (or creates) the history database at path and applies the
// schema.
func Open(path string, opts ...Option) (*Log, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	return Wrap(db, opts...), nil
}

// Wrap builds a Log around an already opened database (tests).
func Wrap(db *sql.DB, opts ...Option) *Log {
	l := &Log{
		db:     db,
		newID:  idgen.Prefixed("fev_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record writes one event. Non-blocking: errors are logged but do not
// propagate, so a failing history store never blocks a fill.
func (l *Log) Record(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = l.newID()
	}
	if ev.CreatedAt == 0 {
		ev.CreatedAt = time.Now().Unix()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO fill_events (
			event_id, page_url, host, profile_id, action,
			field_count, match_count, filled_count, message, success, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.PageURL, ev.Host, ev.ProfileID, ev.Action,
		ev.FieldCount, ev.MatchCount, ev.FilledCount, ev.Message, ev.Success, ev.CreatedAt)
	if err != nil {
		l.logger.Error("history record failed", "error", err, "host", ev.Host)
	}
}

// Recent returns the newest events, up to limit.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT event_id, page_url, host, COALESCE(profile_id, ''), action,
		       field_count, match_count, filled_count, COALESCE(message, ''),
		       success, created_at
		FROM fill_events
		ORDER BY created_at DESC, event_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.PageURL, &ev.Host, &ev.ProfileID, &ev.Action,
			&ev.FieldCount, &ev.MatchCount, &ev.FilledCount, &ev.Message,
			&ev.Success, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// RetentionConfig specifies event retention in days. Zero means no cleanup.
type RetentionConfig struct {
	Days   int
	Vacuum bool
}

// Cleanup deletes events exceeding the retention threshold.
func (l *Log) Cleanup(ctx context.Context, cfg RetentionConfig) error {
	if cfg.Days <= 0 {
		return nil
	}
	cutoff := time.Now().Unix() - int64(cfg.Days)*86400
	if _, err := l.db.ExecContext(ctx,
		"DELETE FROM fill_events WHERE created_at < ?", cutoff); err != nil {
		return fmt.Errorf("history: cleanup: %w", err)
	}
	if cfg.Vacuum {
		if _, err := l.db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("history: vacuum: %w", err)
		}
	}
	return nil
}
