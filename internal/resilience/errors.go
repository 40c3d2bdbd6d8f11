package resilience

import "github.com/allisson/secretvault/internal/errors"

// ErrResourceUnavailable is the error an Orchestrator-style caller should
// see instead of a raw ErrBreakerOpen: the operation was refused because
// its dependency is in a known-bad state (circuit open) or because the
// degradation registry has the feature disabled, not because the
// operation itself failed.
var ErrResourceUnavailable = errors.Wrap(errors.ErrLocked, "resource unavailable")
