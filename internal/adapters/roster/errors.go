package roster

import "errors"

// Sentinel errors for roster retrieval.
var (
	ErrNoTournament = errors.New("roster: tournament id is required")
	ErrRequest      = errors.New("roster: request failed")
	ErrDecode       = errors.New("roster: decode page")
)
