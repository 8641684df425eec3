//go:build !chandebug

package cherr

// AssertInvariant is a no-op in a normal build: InternalInvariant errors
// are only returned, per §7, for the caller to handle. Build with the
// chandebug tag to additionally panic here, for tests or local debugging
// that want a hard stop at the point of detection rather than an unwound
// error return.
func AssertInvariant(err *Error) {}
