package fanout

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fan-out errors.
var (
	ErrNilFetch      = errors.New("fanout: nil fetch function")
	ErrUnknownPolicy = errors.New("fanout: unknown policy")
)

// TaskError wraps the failure of a single partition.
type TaskError struct {
	Level string
	Key   string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Level, e.Key, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
