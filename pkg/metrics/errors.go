package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrNoPath        = errors.New("metrics textfile path is empty")
	ErrWriteTextfile = errors.New("metrics textfile write failed")
)
