package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/formfill/idgen"
	"github.com/hazyhaar/formfill/profile/internal/store"
)

// Manager is the persistence collaborator: it owns the profile database and
// the vault gate. The fill pipeline only ever calls LoadProfile/LoadSettings.
type Manager struct {
	store    *store.Store
	newID    idgen.Generator
	logger   *slog.Logger
	unlocked atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator sets a custom ID generator for new profiles.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(m *Manager) { m.newID = gen }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Open opens (or creates) the profile database at path.
func Open(path string, opts ...Option) (*Manager, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("profile: open store: %w", err)
	}
	return newManager(s, opts...), nil
}

// OpenDB builds a Manager around an existing database handle (tests).
func OpenDB(db *sql.DB, opts ...Option) *Manager {
	return newManager(store.Wrap(db), opts...)
}

func newManager(s *store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		newID:  idgen.Prefixed("prof_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}

// SetPassphrase stores a bcrypt hash of pass and unlocks the vault.
func (m *Manager) SetPassphrase(ctx context.Context, pass string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("profile: hash passphrase: %w", err)
	}
	if err := m.store.PutPassHash(ctx, hash); err != nil {
		return fmt.Errorf("profile: store passphrase: %w", err)
	}
	m.unlocked.Store(true)
	return nil
}

// Unlock verifies pass against the stored hash. A vault with no passphrase
// set is always unlocked.
func (m *Manager) Unlock(ctx context.Context, pass string) error {
	hash, err := m.store.GetPassHash(ctx)
	if err != nil {
		return fmt.Errorf("profile: load passphrase hash: %w", err)
	}
	if hash == nil {
		m.unlocked.Store(true)
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(pass)); err != nil {
		return ErrBadPassphrase
	}
	m.unlocked.Store(true)
	return nil
}

// Locked reports whether profile data is currently inaccessible.
func (m *Manager) Locked(ctx context.Context) bool {
	if m.unlocked.Load() {
		return false
	}
	hash, err := m.store.GetPassHash(ctx)
	if err != nil {
		return true
	}
	if hash == nil {
		m.unlocked.Store(true)
		return false
	}
	return true
}

// LoadProfile returns the profile by id, normalized so every built-in
// attribute key is present.
func (m *Manager) LoadProfile(ctx context.Context, id string) (*Profile, error) {
	if m.Locked(ctx) {
		return nil, ErrLocked
	}
	row, err := m.store.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile: load %s: %w", id, err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return fromRow(row)
}

// LoadActiveProfile loads the profile named active in settings.
func (m *Manager) LoadActiveProfile(ctx context.Context) (*Profile, error) {
	st, err := m.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if st.ActiveProfileID == "" {
		return nil, ErrNotFound
	}
	return m.LoadProfile(ctx, st.ActiveProfileID)
}

// SaveProfile inserts or updates a profile. A profile without an ID gets one.
func (m *Manager) SaveProfile(ctx context.Context, p *Profile) error {
	if m.Locked(ctx) {
		return ErrLocked
	}
	p.Normalize()

	attrs, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("profile: marshal attributes: %w", err)
	}
	custom, err := json.Marshal(p.Custom)
	if err != nil {
		return fmt.Errorf("profile: marshal custom fields: %w", err)
	}

	row := &store.Row{
		ID:         p.ID,
		Name:       p.Name,
		Attributes: string(attrs),
		Custom:     string(custom),
	}

	if p.ID == "" {
		p.ID = m.newID()
		row.ID = p.ID
		if err := m.store.InsertProfile(ctx, row); err != nil {
			return fmt.Errorf("profile: insert: %w", err)
		}
		return nil
	}

	err = m.store.UpdateProfile(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		if err := m.store.InsertProfile(ctx, row); err != nil {
			return fmt.Errorf("profile: insert: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("profile: update: %w", err)
	}
	return nil
}

// ListProfiles lists stored profiles, most recently updated first.
func (m *Manager) ListProfiles(ctx context.Context) ([]*Profile, error) {
	if m.Locked(ctx) {
		return nil, ErrLocked
	}
	rows, err := m.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	out := make([]*Profile, 0, len(rows))
	for _, r := range rows {
		p, err := fromRow(r)
		if err != nil {
			m.logger.Warn("profile: skipping unreadable row", "id", r.ID, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// DeleteProfile removes a profile.
func (m *Manager) DeleteProfile(ctx context.Context, id string) error {
	if m.Locked(ctx) {
		return ErrLocked
	}
	return m.store.DeleteProfile(ctx, id)
}

// LoadSettings returns the stored settings, or zero-value defaults when none
// have been written yet.
func (m *Manager) LoadSettings(ctx context.Context) (*Settings, error) {
	row, err := m.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: load settings: %w", err)
	}
	if row == nil {
		return &Settings{}, nil
	}
	st := &Settings{
		ActiveProfileID: row.ActiveProfileID,
		AutoFill:        row.AutoFill,
	}
	if err := json.Unmarshal([]byte(row.Blacklist), &st.Blacklist); err != nil {
		return nil, fmt.Errorf("profile: decode blacklist: %w", err)
	}
	return st, nil
}

// SaveSettings upserts the settings record.
func (m *Manager) SaveSettings(ctx context.Context, st *Settings) error {
	bl, err := json.Marshal(st.Blacklist)
	if err != nil {
		return fmt.Errorf("profile: marshal blacklist: %w", err)
	}
	if st.Blacklist == nil {
		bl = []byte("[]")
	}
	row := &store.SettingsRow{
		ActiveProfileID: st.ActiveProfileID,
		AutoFill:        st.AutoFill,
		Blacklist:       string(bl),
	}
	if err := m.store.PutSettings(ctx, row); err != nil {
		return fmt.Errorf("profile: save settings: %w", err)
	}
	return nil
}

func fromRow(r *store.Row) (*Profile, error) {
	p := &Profile{ID: r.ID, Name: r.Name}
	if err := json.Unmarshal([]byte(r.Attributes), &p.Attributes); err != nil {
		return nil, fmt.Errorf("profile: decode attributes: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Custom), &p.Custom); err != nil {
		return nil, fmt.Errorf("profile: decode custom fields: %w", err)
	}
	p.Normalize()
	return p, nil
}
