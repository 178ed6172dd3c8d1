package autofill

import "errors"

var (
	// ErrNoFields is reported when the page holds no fillable elements.
	ErrNoFields = errors.New("autofill: no fillable fields on page")

	// ErrBlacklisted is reported when the page's host is on the user's
	// never-fill list.
	ErrBlacklisted = errors.New("autofill: site is blacklisted")

	// ErrUnknownAction is returned for commands the agent does not handle.
	ErrUnknownAction = errors.New("autofill: unknown action")
)
