package backend

import "errors"

// Standard backend errors. Drivers must wrap these with additional
// context (fmt.Errorf("...: %w", ErrNotFound)) rather than returning
// driver-specific error types, so callers can use errors.Is uniformly
// across localfs, s3blob, and any future driver.
var (
	// ErrNotFound indicates the requested shard does not exist on this
	// backend. Distinguished from I/O failure so the stripe store can
	// tell "safe to repair" apart from "transport is unreliable right
	// now, don't spuriously rewrite."
	ErrNotFound = errors.New("backend: shard not found")

	// ErrTransientIO indicates a recoverable remote failure (timeout,
	// connection reset, 5xx). The upload engine retries up to
	// max_retries; read paths treat the shard as indeterminate, not
	// missing, and do not trigger repair.
	ErrTransientIO = errors.New("backend: transient I/O failure")

	// ErrPermanentIO indicates an unrecoverable remote failure
	// (permission denied, malformed request, corrupted object).
	// Treated the same as ErrNotFound for read-side repair, but the
	// upload engine's spool record is retained for operator recovery.
	ErrPermanentIO = errors.New("backend: permanent I/O failure")
)
