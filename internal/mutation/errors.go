package mutation

import (
	"errors"
	"fmt"
	"time"

	"github.com/stacklok/dbcluster-console/internal/otel"
)

var (
	// ErrConflict is returned by a Mutator when the backend rejected a stale resourceVersion.
	// The coordinator never surfaces it: conflicts that outlast the window end in a
	// ConflictTimeoutError, which matches ErrConflictTimeout and not ErrConflict.
	ErrConflict = errors.New("resource version conflict")

	// ErrConflictTimeout matches any ConflictTimeoutError via errors.Is.
	ErrConflictTimeout = errors.New("conflict window exceeded")

	// ErrGenerationDivergence matches any GenerationDivergenceError via errors.Is.
	ErrGenerationDivergence = errors.New("generation diverged")

	// ErrAttemptInFlight is reported to a Submit call made while the coordinator still has
	// an attempt pending.
	ErrAttemptInFlight = errors.New("a mutation is already in flight for this coordinator")
)

// IsConflict reports whether err is a version conflict. Besides ErrConflict it recognises
// Kubernetes 409 Conflict status errors and errdefs conflicts raised by the REST client.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrConflict) || otel.IsVersionConflict(err)
}

// ConflictTimeoutError is the terminal error for conflicts that persisted beyond the
// coordinator's maximum window.
type ConflictTimeoutError struct {
	// Elapsed is the time between the first conflict and the decision to give up.
	Elapsed time.Duration
	// MaxWindow is the configured bound that was exceeded.
	MaxWindow time.Duration
	// Attempts is the number of Mutator calls made during the attempt.
	Attempts int
}

// Error implements error.
func (e *ConflictTimeoutError) Error() string {
	return fmt.Sprintf(
		"the object could not be safely updated within %s: it kept changing on the server (%d attempts over %s)",
		e.MaxWindow, e.Attempts, e.Elapsed.Round(time.Millisecond),
	)
}

// Is matches ErrConflictTimeout.
func (*ConflictTimeoutError) Is(target error) bool {
	return target == ErrConflictTimeout
}

// GenerationDivergenceError is the terminal error for an edit whose underlying resource
// had its spec changed by someone else while the edit was in progress.
type GenerationDivergenceError struct {
	// Baseline is the generation the edit was made against.
	Baseline int64
	// Current is the generation found on the server.
	Current int64
}

// Error implements error.
func (e *GenerationDivergenceError) Error() string {
	return fmt.Sprintf(
		"the object was modified by someone else (generation %d, now %d); re-apply your change against the latest version",
		e.Baseline, e.Current,
	)
}

// Is matches ErrGenerationDivergence.
func (*GenerationDivergenceError) Is(target error) bool {
	return target == ErrGenerationDivergence
}

// OtherError carries a non-conflict collaborator failure: validation, network or server
// faults. The coordinator never retries it and hands it to the caller as-is.
type OtherError struct {
	// Op names the failed operation, e.g. "update" or "get".
	Op    string
	Cause error
}

// NewOtherError wraps cause. It returns nil for a nil cause.
func NewOtherError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &OtherError{Op: op, Cause: cause}
}

// Error implements error.
func (e *OtherError) Error() string {
	if e.Op == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the cause.
func (e *OtherError) Unwrap() error {
	return e.Cause
}
