package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Run.
var (
	ErrNoRosterSource = errors.New("service: no roster source")
	ErrNoLadderSource = errors.New("service: no ladder source")
	ErrNoRegions      = errors.New("service: no regions configured")
	ErrRoster         = errors.New("service: roster fetch failed")
	ErrLadder         = errors.New("service: ladder fetch failed")
)

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
