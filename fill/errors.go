package fill

import "errors"

var (
	// ErrAllFailed is returned when every attempted write failed.
	ErrAllFailed = errors.New("fill: all field writes failed")

	// ErrNoOption is returned when no option or member of a choice field
	// corresponds to the profile value, even through aliases.
	ErrNoOption = errors.New("fill: no option matches value")

	// ErrVerify is returned when a write did not stick: the read-back value
	// disagrees with what was written.
	ErrVerify = errors.New("fill: verification read-back mismatch")
)
