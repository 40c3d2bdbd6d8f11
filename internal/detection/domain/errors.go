package domain

import "github.com/allisson/secretvault/internal/errors"

// ErrDetection wraps a scan-level failure: the ignore file could not be
// read or the directory walk itself failed. A single file that cannot be
// read or scanned is recorded in the report's Errors instead of returned
// as an error, and a file excluded by a filter is not recorded at all.
var ErrDetection = errors.Wrap(errors.ErrInvalidInput, "detection scan failed")
