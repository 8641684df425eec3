//go:build chandebug

package cherr

// AssertInvariant panics on an InternalInvariant error in a chandebug
// build (§4.8). Non-InternalInvariant kinds are left for the caller to
// handle normally — this is only for the broken-invariant case, not a
// general assert-on-any-error hook.
func AssertInvariant(err *Error) {
	if err != nil && err.Kind == InternalInvariant {
		panic(err.Error())
	}
}
