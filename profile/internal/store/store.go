// Package store provides the SQLite persistence layer for profiles,
// settings, and the vault passphrase hash.
package store

import (
	"database/sql"

	"github.com/hazyhaar/formfill/dbopen"
)

// Store is the profile database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the profile SQLite database at path and applies
// the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Wrap builds a Store around an already opened database (tests).
func Wrap(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
