package profile

import "errors"

var (
	// ErrLocked is returned when profile data is requested while the vault
	// passphrase has not been verified.
	ErrLocked = errors.New("profile: vault is locked")

	// ErrNotFound is returned when the requested profile does not exist.
	ErrNotFound = errors.New("profile: not found")

	// ErrBadPassphrase is returned by Unlock when the passphrase is wrong.
	ErrBadPassphrase = errors.New("profile: bad passphrase")
)
