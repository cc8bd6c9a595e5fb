package report

import "errors"

// Sentinel errors for report output.
var (
	ErrNoPath    = errors.New("report: output path is required")
	ErrWriteJSON = errors.New("report: write json")
	ErrWriteXLSX = errors.New("report: write xlsx")
)
